// Command blotmeasure measures a well grid on a dotblot image without the UI.
// The three corner wells are given on the command line; measurements go to
// stdout or a CSV file, and the annotated scene can be saved alongside.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dotblot-quant/internal/app"
	"dotblot-quant/internal/grid"
	blotimage "dotblot-quant/internal/image"
	"dotblot-quant/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to dotblot image (TIFF, PNG, or JPEG)")
	corners := flag.String("corners", "", "Corner well centers as x,y;x,y;x,y (A01, A12, H01)")
	rows := flag.Int("rows", grid.DefaultRows, "Number of grid rows")
	cols := flag.Int("cols", grid.DefaultCols, "Number of grid columns")
	radius := flag.Int("radius", grid.DefaultRadius, "ROI radius in pixels")
	offsetX := flag.Int("offset-x", 0, "Grid translation along x")
	offsetY := flag.Int("offset-y", 0, "Grid translation along y")
	spacingX := flag.Float64("spacing-x", 0, "Extra horizontal spacing per column")
	spacingY := flag.Float64("spacing-y", 0, "Extra vertical spacing per row (overrides spacing-x)")
	saturation := flag.Float64("saturation", blotimage.DefaultSaturation, "Display saturation fraction for the scene")
	csvPath := flag.String("csv", "", "Write measurements to this CSV file")
	scenePath := flag.String("out", "", "Write the annotated scene to this image file")
	flag.Parse()

	if *imagePath == "" || *corners == "" {
		fmt.Println("Usage: blotmeasure -image <path> -corners x,y;x,y;x,y [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	points, err := parseCorners(*corners)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad -corners value: %v\n", err)
		os.Exit(1)
	}

	session := app.NewSession()
	if err := session.LoadImage(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	img := session.CurrentImage()
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Width, img.Height)

	session.SetSaturation(*saturation)
	session.SetGridShape(*rows, *cols)
	session.SetROIRadius(*radius)

	if err := session.StartDefineGrid(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	for _, p := range points {
		session.ClickCorner(p.X, p.Y)
	}
	if *offsetX != 0 || *offsetY != 0 {
		session.TranslateGrid(*offsetX, *offsetY)
	}
	if *spacingX != 0 {
		session.AdjustSpacing(grid.AxisWidth, *spacingX)
	}
	if *spacingY != 0 {
		session.AdjustSpacing(grid.AxisHeight, *spacingY)
	}

	if err := session.Measure(); err != nil {
		fmt.Fprintf(os.Stderr, "Measurement failed: %v\n", err)
		os.Exit(1)
	}

	records := session.Measurements()
	fmt.Printf("\nMeasured %d wells:\n", len(records))
	fmt.Printf("%-6s %8s %8s %8s %10s %10s %8s %8s %8s\n",
		"well", "x", "y", "median", "mean", "stdev", "mode", "min", "max")
	for _, r := range records {
		fmt.Printf("%-6s %8d %8d %8d %10.1f %10.1f %8d %8d %8d\n",
			r.Well, r.X, r.Y, r.Median, r.Mean, r.Stdev, r.Mode, r.Min, r.Max)
	}

	if *csvPath != "" {
		if err := session.ExportCSV(*csvPath); err != nil {
			fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nMeasurements written to %s\n", *csvPath)
	}
	if *scenePath != "" {
		if err := session.SaveScene(*scenePath); err != nil {
			fmt.Fprintf(os.Stderr, "Scene export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Scene written to %s\n", *scenePath)
	}
}

// parseCorners parses "x,y;x,y;x,y" into exactly three points.
func parseCorners(s string) ([]geometry.Point2D, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected 3 points, got %d", len(parts))
	}
	points := make([]geometry.Point2D, 0, 3)
	for _, part := range parts {
		xy := strings.Split(strings.TrimSpace(part), ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("bad point %q", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad x in %q: %w", part, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad y in %q: %w", part, err)
		}
		points = append(points, geometry.Point2D{X: x, Y: y})
	}
	return points, nil
}
