package report

import "time"

// FormatDate turns a YYYY-MM-DD summary date into DD/MM/YYYY. Anything
// else is returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format(dateLayout)
}

// Filename builds "<prefix>_YYYY-MM-DD.<ext>".
func Filename(prefix, date, ext string) string {
	return prefix + "_" + date + "." + ext
}
