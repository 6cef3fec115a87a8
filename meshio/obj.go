package meshio

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type objParser struct {
	positions []mgl32.Vec3
	colors    []mgl32.Vec4 // only filled by "v x y z r g b" lines
	normals   []mgl32.Vec3
	out       *soup
}

// parseOBJ reads positions, optional vertex colors, normals and faces. Faces are fan triangulated.
// Texture coordinates, groups and materials are skipped.
func parseOBJ(data []byte) (*soup, error) {
	p := &objParser{out: &soup{hasNormals: true, hasColors: true}}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		f := strings.Fields(text)
		if len(f) == 0 {
			continue
		}
		var err error
		switch f[0] {
		case "v":
			err = p.vertex(f[1:])
		case "vn":
			if len(f) < 4 {
				err = errors.New("normal needs 3 coordinates")
				break
			}
			var n mgl32.Vec3
			n, err = parseVec3(f[1:4])
			p.normals = append(p.normals, normalizeOr(n, mgl32.Vec3{0, 0, 1}))
		case "f":
			err = p.face(f[1:])
		}
		if err != nil {
			return nil, errors.Wrapf(err, "obj:%d", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "obj")
	}
	if len(p.out.corners) == 0 {
		p.out.hasNormals, p.out.hasColors = false, false
	}
	return p.out, nil
}

func (p *objParser) vertex(f []string) error {
	if len(f) < 3 {
		return errors.New("vertex needs 3 coordinates")
	}
	v, err := parseVec3(f[:3])
	if err != nil {
		return err
	}
	p.positions = append(p.positions, v)
	if len(f) >= 6 {
		c, err := parseVec3(f[3:6])
		if err != nil {
			return err
		}
		for len(p.colors) < len(p.positions)-1 {
			p.colors = append(p.colors, mgl32.Vec4{})
		}
		p.colors = append(p.colors, c.Vec4(1))
	}
	return nil
}

func (p *objParser) face(f []string) error {
	if len(f) < 3 {
		return errors.Errorf("face with %d vertices", len(f))
	}
	poly := make([]corner, len(f))
	for i, ref := range f {
		c, err := p.corner(ref)
		if err != nil {
			return err
		}
		poly[i] = c
	}
	for i := 1; i+1 < len(poly); i++ {
		p.out.corners = append(p.out.corners, poly[0], poly[i], poly[i+1])
	}
	return nil
}

// corner resolves "v", "v/vt", "v//vn" or "v/vt/vn".
func (p *objParser) corner(ref string) (corner, error) {
	var c corner
	parts := strings.Split(ref, "/")
	vi, err := resolveIndex(parts[0], len(p.positions))
	if err != nil {
		return c, errors.Wrapf(err, "vertex %q", ref)
	}
	c.pos = p.positions[vi]
	if vi < len(p.colors) && p.colors[vi][3] != 0 {
		c.color = p.colors[vi]
	} else {
		p.out.hasColors = false
	}
	if len(parts) == 3 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(p.normals))
		if err != nil {
			return c, errors.Wrapf(err, "normal %q", ref)
		}
		c.normal = p.normals[ni]
	} else {
		p.out.hasNormals = false
	}
	return c, nil
}

// resolveIndex maps a 1 based or negative (relative to the end) index onto [0, n).
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, errors.Errorf("index %d out of range for %d elements", i, n)
}
