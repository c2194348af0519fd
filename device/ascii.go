package device

import "strings"

// Frame geometry is a startup constant shared by capture, rendering and the
// wire format. Every frame is FrameHeight rows of FrameWidth cells, each row
// newline-terminated.
const (
	FrameWidth  = 80
	FrameHeight = 40
)

// asciiRamp maps luminance to glyphs, darkest first.
var asciiRamp = []byte(" .:-=+*#%@")

// FrameFromRGB converts a packed RGB24 image of arbitrary size into an ASCII
// frame: nearest-neighbor downscale to FrameWidth x FrameHeight, then
// Rec.601 luma through the ramp.
func FrameFromRGB(data []byte, w, h int) string {
	if w <= 0 || h <= 0 || len(data) < w*h*3 {
		return NoCameraFrame()
	}
	var b strings.Builder
	b.Grow((FrameWidth + 1) * FrameHeight)
	for y := 0; y < FrameHeight; y++ {
		sy := y * h / FrameHeight
		for x := 0; x < FrameWidth; x++ {
			sx := x * w / FrameWidth
			i := (sy*w + sx) * 3
			luma := (299*int(data[i]) + 587*int(data[i+1]) + 114*int(data[i+2])) / 1000
			b.WriteByte(asciiRamp[luma*(len(asciiRamp)-1)/255])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

var noCameraFrame = buildNoCameraFrame()

// NoCameraFrame returns the synthesized frame used when the camera is absent
// or failing, and as the outbound frame while video is muted. Same shape as a
// live frame, stable across calls.
func NoCameraFrame() string {
	return noCameraFrame
}

func buildNoCameraFrame() string {
	const label = "[ NO CAMERA ]"
	rows := make([][]byte, FrameHeight)
	for y := range rows {
		row := make([]byte, FrameWidth)
		for x := range row {
			switch {
			case y == 0 || y == FrameHeight-1:
				row[x] = '-'
			case x == 0 || x == FrameWidth-1:
				row[x] = '|'
			default:
				row[x] = ' '
			}
		}
		rows[y] = row
	}
	start := (FrameWidth - len(label)) / 2
	copy(rows[FrameHeight/2][start:], label)
	var b strings.Builder
	b.Grow((FrameWidth + 1) * FrameHeight)
	for _, row := range rows {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
