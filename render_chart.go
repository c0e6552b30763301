// File: render_chart.go
package main

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"gonum.org/v1/gonum/floats"
)

// ChartConfig controls the bar chart. Font sizes are in points at DPI.
type ChartConfig struct {
	Width, Height int // 画布像素
	DPI           float64
	Title         string
	XLabel        string
	YLabel        string
	BarColor      string // hex, e.g. "#FF0000"
	RunID         string // printed small in the top-right corner when set

	LabelFontSize float64 // title and axis labels
	XTickFontSize float64
	YTickFontSize float64
	ValueFontSize float64 // numbers above the bars
}

// DefaultChartConfig matches the original 18×12 in figure at 100 dpi.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:         1800,
		Height:        1200,
		DPI:           100,
		Title:         "Interactions over Time",
		XLabel:        "Interaction",
		YLabel:        "Simulation time (ns)",
		BarColor:      "#FF0000",
		LabelFontSize: 16,
		XTickFontSize: 12,
		YTickFontSize: 16,
		ValueFontSize: 10,
	}
}

// RenderChart draws one bar per entry and returns the PNG bytes. An empty
// entry list still yields the axes and title.
func RenderChart(entries []ReportEntry, cfg ChartConfig) ([]byte, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("chart size %dx%d", cfg.Width, cfg.Height)
	}
	fnt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := func(pt float64) font.Face {
		return truetype.NewFace(fnt, &truetype.Options{Size: pt * cfg.DPI / 72, Hinting: font.HintingFull})
	}
	labelFace := face(cfg.LabelFontSize)
	xTickFace := face(cfg.XTickFontSize)
	yTickFace := face(cfg.YTickFontSize)
	valueFace := face(cfg.ValueFontSize)

	dc := gg.NewContext(cfg.Width, cfg.Height)
	// 白底
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// 1) 先量出 x 轴标签需要的高度，决定下边距
	dc.SetFontFace(xTickFace)
	maxLabel := 0.0
	for _, e := range entries {
		if w, _ := dc.MeasureString(e.Label); w > maxLabel {
			maxLabel = w
		}
	}
	labelH := labelFace.Metrics().Height.Ceil()
	bottom := math.Min(maxLabel+float64(labelH)*2+20, float64(cfg.Height)/2)
	top := float64(labelH) * 3
	left := float64(labelH)*2 + 90
	right := 40.0

	x0, x1 := left, float64(cfg.Width)-right
	y0, y1 := top, float64(cfg.Height)-bottom
	plotW, plotH := x1-x0, y1-y0

	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.TimeNs
	}
	yMax := 1.0
	if len(values) > 0 {
		if m := floats.Max(values); m > 0 {
			yMax = m * 1.1 // 给数值标注留空间
		}
	}
	step := niceStep(yMax, 8)
	yMax = math.Ceil(yMax/step) * step
	toY := func(v float64) float64 { return y1 - v/yMax*plotH }

	// 2) y 轴刻度和网格
	dc.SetFontFace(yTickFace)
	dc.SetLineWidth(1)
	for v := 0.0; v <= yMax+step/2; v += step {
		y := toY(v)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawLine(x0, y, x1, y)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawLine(x0-6, y, x0, y)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(v, step), x0-10, y, 1, 0.35)
	}

	// 3) 柱子、数值和 x 轴标签
	if n := len(entries); n > 0 {
		slot := plotW / float64(n)
		barW := slot * 0.8
		for i, e := range entries {
			cx := x0 + slot*(float64(i)+0.5)
			barTop := toY(e.TimeNs)
			dc.SetHexColor(cfg.BarColor)
			dc.DrawRectangle(cx-barW/2, barTop, barW, y1-barTop)
			dc.Fill()

			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(valueFace)
			dc.Push()
			dc.RotateAbout(gg.Radians(-45), cx, barTop-2)
			dc.DrawStringAnchored(fmt.Sprintf("%.2f", e.TimeNs), cx, barTop-2, 0.5, 0)
			dc.Pop()

			dc.SetFontFace(xTickFace)
			dc.Push()
			dc.RotateAbout(gg.Radians(-90), cx, y1+8)
			dc.DrawStringAnchored(e.Label, cx, y1+8, 1, 0.35)
			dc.Pop()
		}
	}

	// 4) 坐标轴
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(x0, y0, plotW, plotH)
	dc.Stroke()

	// 5) 标题和轴名
	dc.SetFontFace(labelFace)
	dc.DrawStringAnchored(cfg.Title, x0+plotW/2, top/2, 0.5, 0.5)
	dc.DrawStringAnchored(cfg.XLabel, x0+plotW/2, float64(cfg.Height)-float64(labelH), 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), float64(labelH), y0+plotH/2)
	dc.DrawStringAnchored(cfg.YLabel, float64(labelH), y0+plotH/2, 0.5, 0.5)
	dc.Pop()

	if cfg.RunID != "" {
		dc.SetFontFace(valueFace)
		dc.SetRGB(0.6, 0.6, 0.6)
		dc.DrawStringAnchored("run "+cfg.RunID, x1, top/2, 1, 0.5)
	}

	// 输出 PNG
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatTick prints just enough decimals for the tick step.
func formatTick(v, step float64) string {
	dec := 0
	if step < 1 {
		dec = int(math.Ceil(-math.Log10(step)))
	}
	return fmt.Sprintf("%.*f", dec, v)
}
