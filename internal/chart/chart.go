// Package chart renders dataframe columns into images with gonum/plot.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/viant/datacrew/internal/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// DefaultPath is used when no save path is provided.
const DefaultPath = "visualization.png"

const (
	width  = 10 * vg.Inch
	height = 6 * vg.Inch
)

// Types lists supported plot types.
var Types = []string{"histogram", "scatter", "bar", "line", "correlation_heatmap", "boxplot"}

// Spec selects a plot type and its parameters.
type Spec struct {
	Type       string                 `json:"plot_type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Format returns the image format implied by savePath, png by default.
func Format(savePath string) string {
	format := strings.ToLower(strings.TrimPrefix(path.Ext(savePath), "."))
	switch format {
	case "png", "jpg", "jpeg", "svg", "pdf", "tif", "tiff", "eps":
		return format
	}
	return "png"
}

// Render draws the frame according to spec and encodes it in format.
func Render(frame *dataframe.Frame, spec Spec, format string) ([]byte, error) {
	if spec.Parameters == nil {
		spec.Parameters = map[string]interface{}{}
	}
	p := plot.New()
	var err error
	switch strings.ToLower(spec.Type) {
	case "histogram":
		err = histogram(p, frame, spec.Parameters)
	case "scatter":
		err = scatter(p, frame, spec.Parameters)
	case "bar":
		err = bar(p, frame, spec.Parameters)
	case "line":
		err = line(p, frame, spec.Parameters)
	case "correlation_heatmap":
		err = heatmap(p, frame, spec.Parameters)
	case "boxplot":
		err = boxplot(p, frame, spec.Parameters)
	default:
		return nil, fmt.Errorf("unsupported plot type '%s'", spec.Type)
	}
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = "png"
	}
	writer, err := p.WriterTo(width, height, format)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if _, err = writer.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func histogram(p *plot.Plot, frame *dataframe.Frame, params map[string]interface{}) error {
	name := stringParam(params, "column")
	if name == "" {
		return errors.New("'column' parameter required for histogram")
	}
	values, err := numericValues(frame, name)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("column '%s' has no values to plot", name)
	}
	bins, err := dataframe.Int(params["bins"])
	if err != nil {
		return fmt.Errorf("invalid 'bins': %w", err)
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Log2(float64(len(values))))) + 1
	}
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	p.Add(hist)
	if kde, _ := params["kde"].(bool); kde && len(hist.Bins) > 0 {
		binWidth := hist.Bins[0].Max - hist.Bins[0].Min
		curve, err := density(values, binWidth)
		if err != nil {
			return err
		}
		p.Add(curve)
	}
	p.Title.Text = "Histogram of " + name
	p.X.Label.Text = name
	p.Y.Label.Text = "Frequency"
	return nil
}

func scatter(p *plot.Plot, frame *dataframe.Frame, params map[string]interface{}) error {
	x, y := stringParam(params, "x"), stringParam(params, "y")
	if x == "" || y == "" {
		return errors.New("'x' and 'y' parameters required for scatter plot")
	}
	xs, ys, rows, err := pairs(frame, x, y)
	if err != nil {
		return err
	}
	hue := stringParam(params, "hue")
	hueColumn, hasHue := frame.Column(hue)
	if hue == "" || !hasHue {
		points := make(plotter.XYs, len(xs))
		for i := range xs {
			points[i] = plotter.XY{X: xs[i], Y: ys[i]}
		}
		s, err := plotter.NewScatter(points)
		if err != nil {
			return err
		}
		p.Add(s)
	} else {
		var order []string
		groups := map[string]plotter.XYs{}
		for i, row := range rows {
			label := fmt.Sprint(hueColumn.Values[row])
			if hueColumn.Values[row] == nil {
				continue
			}
			if _, ok := groups[label]; !ok {
				order = append(order, label)
			}
			groups[label] = append(groups[label], plotter.XY{X: xs[i], Y: ys[i]})
		}
		for i, label := range order {
			s, err := plotter.NewScatter(groups[label])
			if err != nil {
				return err
			}
			s.GlyphStyle.Color = plotutil.Color(i)
			s.GlyphStyle.Shape = plotutil.Shape(i)
			p.Add(s)
			p.Legend.Add(label, s)
		}
		p.Legend.Top = true
	}
	p.Title.Text = fmt.Sprintf("Scatter Plot: %s vs %s", y, x)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return nil
}

func bar(p *plot.Plot, frame *dataframe.Frame, params map[string]interface{}) error {
	x, y := stringParam(params, "x"), stringParam(params, "y")
	if x == "" || y == "" {
		return errors.New("'x' and 'y' parameters required for bar chart")
	}
	columns, err := frame.MustColumns(x, y)
	if err != nil {
		return err
	}
	xColumn, yColumn := columns[0], columns[1]
	if !yColumn.Kind.IsNumeric() {
		return fmt.Errorf("column '%s' is not numeric", y)
	}
	var labels []string
	sums := map[string]float64{}
	counts := map[string]int{}
	for i, value := range xColumn.Values {
		yv, ok := yColumn.Values[i], yColumn.Values[i] != nil
		if value == nil || !ok {
			continue
		}
		label := fmt.Sprint(value)
		if _, seen := counts[label]; !seen {
			labels = append(labels, label)
		}
		f, _ := toFloat(yv)
		sums[label] += f
		counts[label]++
	}
	if len(labels) == 0 {
		return fmt.Errorf("columns '%s' and '%s' have no values to plot", x, y)
	}
	means := make(plotter.Values, len(labels))
	for i, label := range labels {
		means[i] = sums[label] / float64(counts[label])
	}
	bars, err := plotter.NewBarChart(means, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.Title.Text = fmt.Sprintf("Bar Chart: %s by %s", y, x)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	if len(labels) > 5 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = -1
	}
	return nil
}

func line(p *plot.Plot, frame *dataframe.Frame, params map[string]interface{}) error {
	x, y := stringParam(params, "x"), stringParam(params, "y")
	if x == "" || y == "" {
		return errors.New("'x' and 'y' parameters required for line chart")
	}
	columns, err := frame.MustColumns(x, y)
	if err != nil {
		return err
	}
	xColumn := columns[0]
	var points plotter.XYs
	if xColumn.Kind.IsNumeric() {
		xs, ys, _, err := pairs(frame, x, y)
		if err != nil {
			return err
		}
		for i := range xs {
			points = append(points, plotter.XY{X: xs[i], Y: ys[i]})
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
	} else {
		ys, err := numericColumn(frame, y)
		if err != nil {
			return err
		}
		type labeled struct {
			label string
			y     float64
		}
		var items []labeled
		for i, value := range xColumn.Values {
			yv, ok := toFloat(ys.Values[i])
			if value == nil || !ok {
				continue
			}
			items = append(items, labeled{label: fmt.Sprint(value), y: yv})
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].label < items[j].label })
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = item.label
			points = append(points, plotter.XY{X: float64(i), Y: item.y})
		}
		p.NominalX(labels...)
	}
	if len(points) == 0 {
		return fmt.Errorf("columns '%s' and '%s' have no values to plot", x, y)
	}
	l, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	l.LineStyle.Color = plotutil.Color(0)
	p.Add(l)
	p.Title.Text = fmt.Sprintf("Line Chart: %s vs %s", y, x)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return nil
}

func heatmap(p *plot.Plot, frame *dataframe.Frame, params map[string]interface{}) error {
	names, matrix, err := frame.CorrelationMatrix()
	if err != nil {
		return errors.New("No numeric columns found for correlation heatmap")
	}
	colors, err := colorMap(stringParam(params, "colormap"))
	if err != nil {
		return err
	}
	colors.SetMin(-1)
	colors.SetMax(1)
	grid := &correlationGrid{matrix: matrix}
	h := plotter.NewHeatMap(grid, colors.Palette(255))
	h.Min, h.Max = -1, 1
	h.NaN = color.Gray{Y: 200}
	p.Add(h)

	showValues := true
	if value, ok := params["show_values"].(bool); ok {
		showValues = value
	}
	if showValues {
		labels := plotter.XYLabels{}
		for r := range matrix {
			for c := range matrix[r] {
				labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
				text := "nan"
				if v := matrix[r][c]; !math.IsNaN(v) {
					text = fmt.Sprintf("%.2f", v)
				}
				labels.Labels = append(labels.Labels, text)
			}
		}
		annotations, err := plotter.NewLabels(labels)
		if err != nil {
			return err
		}
		p.Add(annotations)
	}
	p.NominalX(names...)
	p.NominalY(names...)
	p.Title.Text = "Correlation Matrix Heatmap"
	return nil
}

// kdePoints is the number of points sampled along the density curve.
const kdePoints = 100

// density returns a gaussian kernel density estimate of values scaled to
// histogram counts, with the bandwidth from Scott's rule.
func density(values []float64, binWidth float64) (*plotter.Line, error) {
	n := float64(len(values))
	bandwidth := stat.StdDev(values, nil) * math.Pow(n, -0.2)
	if math.IsNaN(bandwidth) || bandwidth == 0 {
		return nil, errors.New("cannot estimate density of a column with a single distinct value")
	}
	low, high := floats.Min(values), floats.Max(values)
	norm := 1 / (bandwidth * math.Sqrt(2*math.Pi))
	xys := make(plotter.XYs, kdePoints)
	step := (high - low) / float64(kdePoints-1)
	for i := range xys {
		x := low + float64(i)*step
		sum := 0.0
		for _, v := range values {
			z := (x - v) / bandwidth
			sum += norm * math.Exp(-z*z/2)
		}
		xys[i] = plotter.XY{X: x, Y: sum * binWidth}
	}
	curve, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	curve.Color = plotutil.Color(1)
	curve.Width = vg.Points(2)
	return curve, nil
}

// colorMaps lists heatmap color maps by name; a "_r" suffix reverses any of them.
var colorMaps = map[string]func() palette.ColorMap{
	"coolwarm":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"blue_red":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"purple_orange":      func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
	"green_purple":       func() palette.ColorMap { return moreland.SmoothGreenPurple() },
	"blue_tan":           func() palette.ColorMap { return moreland.SmoothBlueTan() },
	"green_red":          func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"blackbody":          moreland.BlackBody,
	"hot":                moreland.BlackBody,
	"extended_blackbody": moreland.ExtendedBlackBody,
	"kindlmann":          moreland.Kindlmann,
	"extended_kindlmann": moreland.ExtendedKindlmann,
}

// colorMapNames returns the supported heatmap color map names.
func colorMapNames() []string {
	names := make([]string, 0, len(colorMaps))
	for name := range colorMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func colorMap(name string) (palette.ColorMap, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "coolwarm"
	}
	reversed := strings.HasSuffix(name, "_r")
	constructor, ok := colorMaps[strings.TrimSuffix(name, "_r")]
	if !ok {
		return nil, fmt.Errorf("unsupported colormap '%s', use one of: %s", name, strings.Join(colorMapNames(), ", "))
	}
	colors := constructor()
	if reversed {
		colors = palette.Reverse(colors)
	}
	return colors, nil
}

func boxplot(p *plot.Plot, frame *dataframe.Frame, params map[string]interface{}) error {
	name := stringParam(params, "column")
	if name == "" {
		return errors.New("'column' parameter required for boxplot")
	}
	column, err := numericColumn(frame, name)
	if err != nil {
		return err
	}
	groupBy := stringParam(params, "group_by")
	if groupBy == "" {
		values := column.Floats()
		if len(values) == 0 {
			return fmt.Errorf("column '%s' has no values to plot", name)
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(values))
		if err != nil {
			return err
		}
		p.Add(box)
		p.NominalX(name)
	} else {
		groupColumn, ok := frame.Column(groupBy)
		if !ok {
			return fmt.Errorf("column '%s' not found", groupBy)
		}
		var labels []string
		groups := map[string]plotter.Values{}
		for i, value := range groupColumn.Values {
			v, ok := toFloat(column.Values[i])
			if value == nil || !ok {
				continue
			}
			label := fmt.Sprint(value)
			if _, seen := groups[label]; !seen {
				labels = append(labels, label)
			}
			groups[label] = append(groups[label], v)
		}
		if len(labels) == 0 {
			return fmt.Errorf("column '%s' has no values to plot", name)
		}
		for i, label := range labels {
			box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), groups[label])
			if err != nil {
				return err
			}
			box.FillColor = plotutil.Color(i)
			p.Add(box)
		}
		p.NominalX(labels...)
		p.X.Label.Text = groupBy
	}
	p.Y.Label.Text = name
	p.Title.Text = "Boxplot of " + name
	return nil
}

type correlationGrid struct {
	matrix [][]float64
}

func (g *correlationGrid) Dims() (c, r int)   { return len(g.matrix), len(g.matrix) }
func (g *correlationGrid) Z(c, r int) float64 { return g.matrix[r][c] }
func (g *correlationGrid) X(c int) float64    { return float64(c) }
func (g *correlationGrid) Y(r int) float64    { return float64(r) }

func stringParam(params map[string]interface{}, key string) string {
	value, _ := params[key].(string)
	return strings.TrimSpace(value)
}

func numericColumn(frame *dataframe.Frame, name string) (*dataframe.Column, error) {
	columns, err := frame.MustColumns(name)
	if err != nil {
		return nil, err
	}
	if !columns[0].Kind.IsNumeric() {
		return nil, fmt.Errorf("column '%s' is not numeric", name)
	}
	return columns[0], nil
}

func numericValues(frame *dataframe.Frame, name string) ([]float64, error) {
	column, err := numericColumn(frame, name)
	if err != nil {
		return nil, err
	}
	return column.Floats(), nil
}

// pairs returns complete x/y observations with their row indexes.
func pairs(frame *dataframe.Frame, x, y string) ([]float64, []float64, []int, error) {
	xColumn, err := numericColumn(frame, x)
	if err != nil {
		return nil, nil, nil, err
	}
	yColumn, err := numericColumn(frame, y)
	if err != nil {
		return nil, nil, nil, err
	}
	var xs, ys []float64
	var rows []int
	for i := range xColumn.Values {
		xv, ok1 := toFloat(xColumn.Values[i])
		yv, ok2 := toFloat(yColumn.Values[i])
		if ok1 && ok2 {
			xs = append(xs, xv)
			ys = append(ys, yv)
			rows = append(rows, i)
		}
	}
	if len(xs) == 0 {
		return nil, nil, nil, fmt.Errorf("columns '%s' and '%s' have no values to plot", x, y)
	}
	return xs, ys, rows, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch actual := v.(type) {
	case int64:
		return float64(actual), true
	case float64:
		return actual, !math.IsNaN(actual)
	}
	return 0, false
}
