package domain

// ChartInfo names one chart of the gallery.
type ChartInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
