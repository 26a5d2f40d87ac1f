package tags

import (
	"fmt"
	"io"
)

// mpegHeader is the decoded 4-byte header of an MPEG audio frame.
type mpegHeader struct {
	version    int // 1, 2 or 25 (MPEG 2.5)
	layer      int // 1, 2 or 3
	bitrate    int // kbit/s
	sampleRate int
	mode       int // 0 stereo, 1 joint stereo, 2 dual channel, 3 mono
}

var mpegBitrates = map[[2]int][16]int{
	{1, 1}: {0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
	{1, 2}: {0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
	{1, 3}: {0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	{2, 1}: {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
	{2, 2}: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	{2, 3}: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
}

var mpegSampleRates = map[int][3]int{
	1:  {44100, 48000, 32000},
	2:  {22050, 24000, 16000},
	25: {11025, 12000, 8000},
}

// parseMPEGHeader decodes b as a frame header.
func parseMPEGHeader(b []byte) (mpegHeader, bool) {
	if len(b) < 4 || b[0] != 0xff || b[1]&0xe0 != 0xe0 {
		return mpegHeader{}, false
	}

	var h mpegHeader
	switch (b[1] >> 3) & 0x03 {
	case 0:
		h.version = 25
	case 2:
		h.version = 2
	case 3:
		h.version = 1
	default:
		return mpegHeader{}, false
	}

	layerBits := (b[1] >> 1) & 0x03
	if layerBits == 0 {
		return mpegHeader{}, false
	}
	h.layer = 4 - int(layerBits)

	bitrateIdx := int(b[2] >> 4)
	srIdx := int(b[2]>>2) & 0x03
	if bitrateIdx == 0x0f || srIdx == 0x03 {
		return mpegHeader{}, false
	}

	tableVersion := h.version
	if tableVersion == 25 {
		tableVersion = 2
	}
	h.bitrate = mpegBitrates[[2]int{tableVersion, h.layer}][bitrateIdx]
	h.sampleRate = mpegSampleRates[h.version][srIdx]
	h.mode = int(b[3] >> 6)
	return h, true
}

// findMPEGHeader scans up to 64 KiB of r for the first valid frame header.
func findMPEGHeader(r io.Reader) (mpegHeader, bool) {
	buf := make([]byte, 64*1024)
	n, _ := io.ReadFull(r, buf)
	buf = buf[:n]
	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xff {
			continue
		}
		if h, ok := parseMPEGHeader(buf[i : i+4]); ok {
			return h, true
		}
	}
	return mpegHeader{}, false
}

func (h mpegHeader) versionString() string {
	v := fmt.Sprintf("%d", h.version)
	if h.version == 25 {
		v = "2.5"
	}
	return fmt.Sprintf("MPEG %s, Layer %s", v, [...]string{"", "I", "II", "III"}[h.layer])
}

func (h mpegHeader) modeString() string {
	return [...]string{"Stereo", "Joint stereo", "Dual channel", "Mono"}[h.mode]
}

func (h mpegHeader) channels() int {
	if h.mode == 3 {
		return 1
	}
	return 2
}
