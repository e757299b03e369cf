package tweenguide

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// LineTester checks captured overlay frames against approved baselines,
// the animation line-test: flip the new drawing against the old one and
// look for anything that moved.
//
// Overlay edges are anti-aliased, so exact pixel equality is too strict:
// a pixel only counts as moved when some channel drifts past the channel
// slack. The tolerance then bounds the fraction of moved pixels.
type LineTester struct {
	baselineDir  string
	currentDir   string
	tolerance    float64 // fraction of pixels allowed to differ
	channelSlack uint8   // per-channel drift treated as equal
}

// NewLineTester creates a line tester with a 5% pixel tolerance and a
// small per-channel slack for anti-aliased edges.
func NewLineTester(baselineDir, currentDir string) *LineTester {
	return &LineTester{
		baselineDir:  baselineDir,
		currentDir:   currentDir,
		tolerance:    0.05,
		channelSlack: 4,
	}
}

// SetTolerance adjusts the allowed fraction of differing pixels.
func (lt *LineTester) SetTolerance(tolerance float64) {
	lt.tolerance = tolerance
}

// SetChannelSlack adjusts the per-channel drift treated as no change.
// Zero demands exact pixel equality.
func (lt *LineTester) SetChannelSlack(slack uint8) {
	lt.channelSlack = slack
}

// Validate compares the current capture for name against its baseline.
// On a regression it writes a diff image next to the capture and returns
// an error describing the difference.
func (lt *LineTester) Validate(name string) error {
	baseline, err := lt.loadImage(filepath.Join(lt.baselineDir, name+".png"))
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	current, err := lt.loadImage(filepath.Join(lt.currentDir, name+".png"))
	if err != nil {
		return fmt.Errorf("failed to load current: %w", err)
	}

	ratio, diff := lt.compare(baseline, current)
	if ratio > lt.tolerance {
		diffPath := filepath.Join(lt.currentDir, name+"_diff.png")
		if err := lt.writeImage(diff, diffPath); err != nil {
			// Diff image is a debugging aid; the comparison still fails below.
			fmt.Printf("Warning: failed to write diff image: %v\n", err)
		}

		return fmt.Errorf("line test failed: %.2f%% difference (tolerance: %.2f%%)",
			ratio*100, lt.tolerance*100)
	}

	return nil
}

func (lt *LineTester) loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

// compare scans both images once, building the diff image as it goes:
// the baseline dimmed, moved pixels flagged in red. It returns the
// fraction of moved pixels. Mismatched dimensions count as fully moved.
func (lt *LineTester) compare(baseline, current image.Image) (float64, *image.RGBA) {
	bounds := baseline.Bounds()
	diff := image.NewRGBA(bounds)

	if bounds != current.Bounds() {
		return 1.0, diff
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0, diff
	}

	moved := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			base := baseline.At(x, y)
			if lt.pixelMoved(base, current.At(x, y)) {
				moved++
				diff.Set(x, y, color.RGBA{255, 0, 0, 255})
				continue
			}
			r, g, b, a := base.RGBA()
			diff.Set(x, y, color.RGBA{
				uint8(r >> 9),
				uint8(g >> 9),
				uint8(b >> 9),
				uint8(a >> 8),
			})
		}
	}

	return float64(moved) / float64(total), diff
}

// pixelMoved reports whether any channel drifts past the slack.
func (lt *LineTester) pixelMoved(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	slack := uint32(lt.channelSlack)
	return channelDelta(ar, br) > slack ||
		channelDelta(ag, bg) > slack ||
		channelDelta(ab, bb) > slack ||
		channelDelta(aa, ba) > slack
}

// channelDelta returns the 8-bit distance between two 16-bit channels.
func channelDelta(a, b uint32) uint32 {
	a >>= 8
	b >>= 8
	if a > b {
		return a - b
	}
	return b - a
}

func (lt *LineTester) writeImage(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SetBaseline approves a capture as the baseline for future line tests.
func (lt *LineTester) SetBaseline(name, capturePath string) error {
	if err := os.MkdirAll(lt.baselineDir, 0755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	input, err := os.Open(capturePath)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.Create(filepath.Join(lt.baselineDir, name+".png"))
	if err != nil {
		return err
	}
	defer output.Close()

	_, err = output.ReadFrom(input)
	return err
}
