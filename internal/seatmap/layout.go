package seatmap

// Palette is the fixed set of colors offered to new sectors
var Palette = []string{
	"#e53935", "#1e88e5", "#43a047", "#fb8c00",
	"#8e24aa", "#00acc1", "#fdd835", "#6d4c41",
}

// PaletteColor picks a palette entry cyclically; negative indexes wrap as well
func PaletteColor(i int) string {
	n := len(Palette)
	return Palette[((i%n)+n)%n]
}

// ColumnGroups splits seat numbers 1..seats into contiguous groups of ceil(seats/columns),
// left to right, with the last group taking the remainder. It may return fewer than
// columns groups when seats do not divide evenly.
func ColumnGroups(seats, columns int) [][]int {
	if seats < 1 {
		return nil
	}
	if columns < 1 {
		columns = 1
	}
	size := (seats + columns - 1) / columns

	groups := make([][]int, 0, columns)
	for start := 1; start <= seats; start += size {
		end := min(start+size-1, seats)
		group := make([]int, 0, end-start+1)
		for n := start; n <= end; n++ {
			group = append(group, n)
		}
		groups = append(groups, group)
	}
	return groups
}

// RowLabel returns the i-th sequential row label: A..Z, AA..AZ, BA..
func RowLabel(i int) string {
	if i < 0 {
		i = 0
	}
	var buf []byte
	for i++; i > 0; i = (i - 1) / 26 {
		buf = append([]byte{byte('A' + (i-1)%26)}, buf...)
	}
	return string(buf)
}
