package tags

import (
	"errors"
	"io"
	"os"
	"time"
)

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := r.Read(header)
	if err != nil {
		return err
	}
	if n < 10 {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	if string(header[0:3]) != id3Magic {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

// id3v2Size returns the length of a leading ID3v2 tag including header and
// footer, or 0 if the data does not start with one.
func id3v2Size(header []byte) int64 {
	if len(header) < 10 || string(header[:3]) != id3Magic {
		return 0
	}
	size := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 |
		int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
	size += 10
	// footer flag, ID3v2.4 only
	if header[5]&0x10 != 0 {
		size += 10
	}
	return size
}

// fileSize returns the size of path, or 0 if it can't be stat'ed.
func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// oggDuration calculates duration from the granule position of the last
// Ogg page. rate is the granule rate: 48000 for Opus, the sample rate for
// Vorbis.
func oggDuration(path string, rate int) (time.Duration, error) {
	if rate <= 0 {
		return 0, errors.New("ogg: invalid granule rate")
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	// Read the last 64KB to find the last Ogg page
	searchSize := min(int64(65536), fi.Size())

	if _, err := f.Seek(-searchSize, io.SeekEnd); err != nil {
		return 0, err
	}

	buf := make([]byte, searchSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	buf = buf[:n]

	// Search backwards for OggS magic
	var lastGranule int64
	for i := len(buf) - 27; i >= 0; i-- {
		if buf[i] == 'O' && buf[i+1] == 'g' && buf[i+2] == 'g' && buf[i+3] == 'S' {
			// Granule position is at offset 6, 8 bytes little-endian
			lastGranule = int64(buf[i+6]) | int64(buf[i+7])<<8 | int64(buf[i+8])<<16 | int64(buf[i+9])<<24 |
				int64(buf[i+10])<<32 | int64(buf[i+11])<<40 | int64(buf[i+12])<<48 | int64(buf[i+13])<<56
			break
		}
	}

	if lastGranule > 0 {
		return time.Duration(float64(lastGranule) / float64(rate) * float64(time.Second)), nil
	}

	return 0, errors.New("could not determine Ogg duration")
}
