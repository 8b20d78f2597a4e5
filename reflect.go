package bmpfilter

// reflectRow reverses the order of the pixels in a row.
func reflectRow(row []Pixel) {
	for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
		row[i], row[j] = row[j], row[i]
	}
}
