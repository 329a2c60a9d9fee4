package analyzer

// PageMetrics is a deterministic structural snapshot of one document.
// It is computed once per analysis and never mutated afterwards.
type PageMetrics struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`

	H1Count int `json:"h1Count"`
	H2Count int `json:"h2Count"`
	H3Count int `json:"h3Count"`

	ImgCount        int `json:"imgCount"`
	ImgWithAltCount int `json:"imgWithAltCount"`

	ScriptCount      int `json:"scriptCount"`
	StylesheetCount  int `json:"stylesheetCount"`
	InlineStyleCount int `json:"inlineStyleCount"`

	HTMLSize int `json:"htmlSize"`

	HasTitle          bool `json:"hasTitle"`
	HasDescription    bool `json:"hasDescription"`
	HasH1             bool `json:"hasH1"`
	UniqueH1          bool `json:"uniqueH1"`
	HasViewport       bool `json:"hasViewport"`
	HasCharset        bool `json:"hasCharset"`
	HasCanonical      bool `json:"hasCanonical"`
	HasRobotsMeta     bool `json:"hasRobotsMeta"`
	HasOpenGraph      bool `json:"hasOpenGraph"`
	HasStructuredData bool `json:"hasStructuredData"`
	HasLang           bool `json:"hasLang"`
	IsHTTPS           bool `json:"isHttps"`

	TotalLinks    int `json:"totalLinks"`
	InternalLinks int `json:"internalLinks"`
	ExternalLinks int `json:"externalLinks"`

	// TextRatio is the visible-text share of the raw markup, as a
	// rounded percentage in [0,100].
	TextRatio int `json:"textRatio"`
}
