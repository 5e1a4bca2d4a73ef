// Package imaging converts pixel buffers between the wire's declared
// ImageFormat (Gray/GrayAlpha/Color/ColorAlpha, 1-4 bytes/pixel) and
// the RGBA layout every locally-held mirror (server authoritative copy
// and client render buffer) is stored in, regardless of wire format.
package imaging

import "github.com/eguisync/eguisync/internal/wire"

// ExpandContiguous converts a tightly packed pixel buffer (stride ==
// width*bytesPerPixel) into an RGBA buffer of size[0]*size[1]*4 bytes.
// size is [rows, cols] (y, x), matching the wire header's convention.
func ExpandContiguous(src []byte, size [2]uint32, format wire.ImageFormat) []byte {
	rows, cols := int(size[0]), int(size[1])
	count := rows * cols
	dst := make([]byte, count*4)

	switch format {
	case wire.FormatColorAlpha:
		copy(dst, src[:count*4])
	case wire.FormatColor:
		for i := 0; i < count; i++ {
			dst[i*4] = src[i*3]
			dst[i*4+1] = src[i*3+1]
			dst[i*4+2] = src[i*3+2]
			dst[i*4+3] = 255
		}
	case wire.FormatGray:
		for i := 0; i < count; i++ {
			p := src[i]
			dst[i*4] = p
			dst[i*4+1] = p
			dst[i*4+2] = p
			dst[i*4+3] = 255
		}
	case wire.FormatGrayAlpha:
		for i := 0; i < count; i++ {
			p := src[i*2]
			dst[i*4] = p
			dst[i*4+1] = p
			dst[i*4+2] = p
			dst[i*4+3] = src[i*2+1]
		}
	}
	return dst
}

// ExpandStrided is ExpandContiguous for a source buffer whose rows are
// stride bytes apart (stride may exceed cols*bytesPerPixel when the
// caller's buffer has row padding).
func ExpandStrided(src []byte, stride int, size [2]uint32, format wire.ImageFormat) []byte {
	rows, cols := int(size[0]), int(size[1])
	dst := make([]byte, rows*cols*4)

	for i := 0; i < rows; i++ {
		row := src[i*stride:]
		drow := dst[i*cols*4:]
		switch format {
		case wire.FormatColorAlpha:
			copy(drow[:cols*4], row[:cols*4])
		case wire.FormatColor:
			for j := 0; j < cols; j++ {
				drow[j*4] = row[j*3]
				drow[j*4+1] = row[j*3+1]
				drow[j*4+2] = row[j*3+2]
				drow[j*4+3] = 255
			}
		case wire.FormatGray:
			for j := 0; j < cols; j++ {
				p := row[j]
				drow[j*4] = p
				drow[j*4+1] = p
				drow[j*4+2] = p
				drow[j*4+3] = 255
			}
		case wire.FormatGrayAlpha:
			for j := 0; j < cols; j++ {
				p := row[j*2]
				drow[j*4] = p
				drow[j*4+1] = p
				drow[j*4+2] = p
				drow[j*4+3] = row[j*2+1]
			}
		}
	}
	return dst
}

// WriteRectangle splices a newly received sub-rectangle (already
// expanded to RGBA by the caller via Expand*) into an existing RGBA
// mirror buffer of row width oldCols pixels, at row/col origin,
// mutating existing in place.
func WriteRectangle(existing []byte, oldCols int, origin [2]uint32, size [2]uint32, newRGBA []byte) {
	top, left := int(origin[0]), int(origin[1])
	rows, cols := int(size[0]), int(size[1])
	for i := 0; i < rows; i++ {
		destOff := ((top+i)*oldCols + left) * 4
		srcOff := i * cols * 4
		copy(existing[destOff:destOff+cols*4], newRGBA[srcOff:srcOff+cols*4])
	}
}
