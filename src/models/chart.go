package models

// -----------------------------------------------------------------------------
// Chart specification structs. A spec is an immutable, JSON-serializable
// description of the figure; the field names follow the Plotly schema so the
// renderer can hand the spec straight to Plotly.newPlot without transforming
// it server-side. Nil values in a trace's Y slice render as gaps.
// -----------------------------------------------------------------------------

type MChartSpec struct {
	Traces []MChartTrace `json:"data"`
	Layout MChartLayout  `json:"layout"`
}

type MChartTrace struct {
	X       []string   `json:"x"` // YYYY-MM-DD
	Y       []*float64 `json:"y"`
	Mode    string     `json:"mode,omitempty"`
	Name    string     `json:"name,omitempty"`
	Line    *MLine     `json:"line,omitempty"`
	XAxis   string     `json:"xaxis,omitempty"`
	YAxis   string     `json:"yaxis,omitempty"`
	Visible string     `json:"visible,omitempty"` // "legendonly" hides by default
}

type MLine struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

type MChartLayout struct {
	Title       MChartTitle   `json:"title"`
	Template    string        `json:"template,omitempty"`
	HoverMode   string        `json:"hovermode,omitempty"`
	ShowLegend  bool          `json:"showlegend"`
	Grid        *MChartGrid   `json:"grid,omitempty"`
	XAxis       *MChartAxis   `json:"xaxis,omitempty"`
	YAxis       *MChartAxis   `json:"yaxis,omitempty"`
	YAxis2      *MChartAxis   `json:"yaxis2,omitempty"`
	YAxis3      *MChartAxis   `json:"yaxis3,omitempty"`
	Shapes      []MChartShape `json:"shapes,omitempty"`
	Annotations []MAnnotation `json:"annotations,omitempty"`
}

type MChartTitle struct {
	Text string `json:"text"`
}

type MChartGrid struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Pattern string `json:"pattern,omitempty"`
}

type MChartAxis struct {
	Title       string        `json:"title,omitempty"`
	Range       []float64     `json:"range,omitempty"`
	Type        string        `json:"type,omitempty"`
	TickFormat  string        `json:"tickformat,omitempty"`
	RangeSlider *MRangeSlider `json:"rangeslider,omitempty"`
	Domain      []float64     `json:"domain,omitempty"`
	Anchor      string        `json:"anchor,omitempty"`
	Overlaying  string        `json:"overlaying,omitempty"`
	Side        string        `json:"side,omitempty"`
}

type MRangeSlider struct {
	Visible bool `json:"visible"`
}

// MChartShape draws reference bands and lines (the 80/20 zones).
type MChartShape struct {
	Type      string  `json:"type"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X0        float64 `json:"x0"`
	X1        float64 `json:"x1"`
	Y0        float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	FillColor string  `json:"fillcolor,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
	Layer     string  `json:"layer,omitempty"`
	Line      *MLine  `json:"line,omitempty"`
}

// MAnnotation marks the latest percentile reading on the chart.
type MAnnotation struct {
	X         string  `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref,omitempty"`
	YRef      string  `json:"yref,omitempty"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	ArrowHead int     `json:"arrowhead,omitempty"`
	AX        int     `json:"ax,omitempty"`
	AY        int     `json:"ay,omitempty"`
	BgColor   string  `json:"bgcolor,omitempty"`
}
