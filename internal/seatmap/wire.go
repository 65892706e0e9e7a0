package seatmap

// SectorSummary is the per-sector record the event persistence API keeps next to the seat map
type SectorSummary struct {
	Nombre     string  `json:"nombre" binding:"required"`
	Precio     float64 `json:"precio" binding:"gte=0"`
	Total      int     `json:"total" binding:"gte=0"`
	Disponible int     `json:"disponible" binding:"gte=0"`
}

// EventUpdate is the body of PUT /events/{id}
type EventUpdate struct {
	Sectores      []SectorSummary `json:"sectores" binding:"dive"`
	SeatMapConfig *Config         `json:"seatMapConfig"`
}

// Summaries derives the persisted sector summaries from the confirmed sectors
func (c *Config) Summaries() []SectorSummary {
	out := make([]SectorSummary, 0, len(c.Sectors))
	for _, s := range c.Sectors {
		out = append(out, SectorSummary{
			Nombre:     s.Name,
			Precio:     s.Price,
			Total:      s.Total,
			Disponible: s.Available,
		})
	}
	return out
}

// NewEventUpdate builds the persistence payload for a seat map
func NewEventUpdate(cfg Config) EventUpdate {
	cfg = cfg.Clone()
	return EventUpdate{
		Sectores:      cfg.Summaries(),
		SeatMapConfig: &cfg,
	}
}
