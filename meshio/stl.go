package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50 // normal, 3 vertices, attribute byte count
)

func parseSTL(data []byte) (*soup, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCIISTL(data)
	}
	return nil, errors.New("stl: neither a binary nor an ascii stl file")
}

// isBinarySTL trusts the facet count in the header when the file size matches it. ASCII files also start
// with "solid", binary exporters sometimes write it into the header too, so the prefix alone decides nothing.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(n)*stlFacetSize
}

func parseBinarySTL(data []byte) (*soup, error) {
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	body := data[stlHeaderSize+4:]
	if uint64(len(body)) < uint64(n)*stlFacetSize {
		return nil, errors.Errorf("stl: %d facets announced, %d bytes present", n, len(body))
	}
	s := &soup{corners: make([]corner, 0, n*3), hasNormals: true}
	for i := 0; i < int(n)*stlFacetSize; i += stlFacetSize {
		normal := toVec3(body[i : i+12])
		v1 := toVec3(body[i+12 : i+24])
		v2 := toVec3(body[i+24 : i+36])
		v3 := toVec3(body[i+36 : i+48])
		s.addFacet(normal, v1, v2, v3)
	}
	return s, nil
}

// addFacet stores one flat shaded triangle. Exporters often leave the stored normal zero, the winding
// decides then.
func (s *soup) addFacet(normal mgl32.Vec3, v1, v2, v3 mgl32.Vec3) {
	n := normalizeOr(normal, mgl32.Vec3{})
	if n.Len() == 0 {
		n = normalizeOr(faceNormal(v1, v2, v3), mgl32.Vec3{0, 0, 1})
	}
	s.corners = append(s.corners,
		corner{pos: v1, normal: n},
		corner{pos: v2, normal: n},
		corner{pos: v3, normal: n},
	)
}

func parseASCIISTL(data []byte) (*soup, error) {
	s := &soup{hasNormals: true}
	var normal mgl32.Vec3
	var loop []mgl32.Vec3
	inFacet := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "facet":
			if len(f) != 5 || f[1] != "normal" {
				return nil, errors.Errorf("stl:%d: malformed facet", line)
			}
			v, err := parseVec3(f[2:5])
			if err != nil {
				return nil, errors.Wrapf(err, "stl:%d", line)
			}
			normal, loop, inFacet = v, loop[:0], true
		case "vertex":
			if !inFacet || len(f) != 4 {
				return nil, errors.Errorf("stl:%d: malformed vertex", line)
			}
			v, err := parseVec3(f[1:4])
			if err != nil {
				return nil, errors.Wrapf(err, "stl:%d", line)
			}
			loop = append(loop, v)
		case "endfacet":
			if !inFacet || len(loop) < 3 {
				return nil, errors.Errorf("stl:%d: facet with %d vertices", line, len(loop))
			}
			for i := 1; i+1 < len(loop); i++ {
				s.addFacet(normal, loop[0], loop[i], loop[i+1])
			}
			inFacet = false
		case "solid", "outer", "endloop", "endsolid":
		default:
			return nil, errors.Errorf("stl:%d: unexpected %q", line, f[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "stl")
	}
	if inFacet {
		return nil, errors.New("stl: unterminated facet")
	}
	return s, nil
}

func parseVec3(f []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i := range v {
		x, err := strconv.ParseFloat(f[i], 32)
		if err != nil {
			return v, errors.Wrapf(err, "coordinate %q", f[i])
		}
		v[i] = float32(x)
	}
	return v, nil
}

func toVec3(b []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		toFloat32(b[:4]),
		toFloat32(b[4:8]),
		toFloat32(b[8:12]),
	}
}

func toFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
