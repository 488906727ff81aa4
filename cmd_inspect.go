package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soocke/login-bot-go/app"
	"github.com/soocke/login-bot-go/domain/capture"
	"github.com/soocke/login-bot-go/domain/coords"
	"github.com/soocke/login-bot-go/domain/layout"
)

var inspectRegions []string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print window metrics, sampled check points and region OCR",
	Long: `Find the game window without launching it and print what the login
engine would see: the client metrics, every check point with its sampled
and expected colour, and the recognised text of every OCR region.

Extra regions in the 3840x2160 reference space can be read with
--region left,top,right,bottom (repeatable).`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringArrayVar(&inspectRegions, "region", nil, "Extra reference-space region to OCR as left,top,right,bottom")
	rootCmd.AddCommand(inspectCmd)
}

// parseRegions names unnamed --region values region-1, region-2, ...
func parseRegions(texts []string) ([]coords.Region, error) {
	out := make([]coords.Region, 0, len(texts))
	for i, text := range texts {
		r, err := coords.ParseRegion(fmt.Sprintf("region-%d", i+1), text)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	extra, err := parseRegions(inspectRegions)
	if err != nil {
		return err
	}

	c, _, err := setup()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	h, err := c.Window.Find()
	if err != nil {
		return err
	}
	m, err := c.Window.CaptureMetrics(h)
	if err != nil {
		return err
	}
	mapper := coords.NewMapper(m, c.Logger)
	wm := mapper.Metrics()
	fmt.Fprintf(out, "window  handle=%#x origin=%s size=%dx%d foreground=%v\n",
		wm.Handle, wm.Origin, wm.Width, wm.Height, c.Window.IsForeground(h))

	for _, id := range layout.Checks() {
		cp := layout.Check(id)
		p, ok := mapper.Convert(cp.Point)
		if !ok {
			fmt.Fprintf(out, "check   %-14s unmapped\n", id)
			continue
		}
		got, err := c.Screen.SamplePixel(p)
		if err != nil {
			fmt.Fprintf(out, "check   %-14s %s error=%v\n", id, p, err)
			continue
		}
		fmt.Fprintf(out, "check   %-14s %s got=#%02x%02x%02x want=#%02x%02x%02x match=%v\n",
			id, p, got.R, got.G, got.B, cp.Color.R, cp.Color.G, cp.Color.B, cp.Matches(got))
	}

	if !c.OCR.Initialize(c.Config.TessdataPath) {
		fmt.Fprintln(out, "ocr     unavailable (language data not found)")
		return nil
	}
	fmt.Fprintf(out, "ocr     tessdata=%s\n", c.OCR.DataPath())
	for _, id := range layout.Regions() {
		printRegion(out, c, mapper, id.String(), layout.Region(id))
	}
	for _, r := range extra {
		printRegion(out, c, mapper, r.Name, r)
	}
	return nil
}

func printRegion(out io.Writer, c *app.Container, mapper *coords.Mapper, name string, region coords.Region) {
	rect := mapper.RegionRect(region)
	if rect.Empty() {
		fmt.Fprintf(out, "region  %-14s unmapped\n", name)
		return
	}
	img, err := c.Screen.CaptureRegion(rect)
	if err != nil {
		fmt.Fprintf(out, "region  %-14s %s error=%v\n", name, rect, err)
		return
	}
	text := c.OCR.Recognize(capture.PrepareForOCR(img, c.Config.OCRMinHeight))
	fmt.Fprintf(out, "region  %-14s %s text=%q\n", name, rect, text)
}
