package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PLYFormat is the encoding of a ply file's body.
type PLYFormat int

const (
	// PLYAscii is the ascii ply encoding.
	PLYAscii PLYFormat = 0
	// PLYBinary is the binary little-endian ply encoding.
	PLYBinary PLYFormat = 1
)

// WriteSettings controls how a cloud is serialized to a ply stream.
type WriteSettings struct {
	Format PLYFormat

	// RemoveDeleted physically omits points whose status has the deleted bit
	// set; they do not appear in the output bytes at all.
	RemoveDeleted bool
}

// WritePLY serializes the cloud to out. Positions are written as float32
// x/y/z, colors (when present) as uchar red/green/blue, and the status byte
// as a uchar state property so deletion decisions survive a round trip.
func WritePLY(cloud PointCloud, out io.Writer, settings WriteSettings) error {
	var format string
	switch settings.Format {
	case PLYAscii:
		format = "ascii"
	case PLYBinary:
		format = "binary_little_endian"
	default:
		return errors.Errorf("unsupported ply format %d", settings.Format)
	}

	count := cloud.Size()
	if settings.RemoveDeleted {
		count = 0
		cloud.Iterate(func(_ int, _ r3.Vector, state byte) bool {
			if !Deleted(state) {
				count++
			}
			return true
		})
	}

	hasColor := cloud.MetaData().HasColor

	w := bufio.NewWriter(out)
	if _, err := fmt.Fprintf(w, "ply\nformat %s 1.0\nelement vertex %d\n", format, count); err != nil {
		return err
	}
	header := "property float x\nproperty float y\nproperty float z\n"
	if hasColor {
		header += "property uchar red\nproperty uchar green\nproperty uchar blue\n"
	}
	header += "property uchar state\nend_header\n"
	if _, err := w.WriteString(header); err != nil {
		return err
	}

	var writeErr error
	cloud.Iterate(func(i int, p r3.Vector, state byte) bool {
		if settings.RemoveDeleted && Deleted(state) {
			return true
		}
		var c color.NRGBA
		if hasColor {
			c, _ = cloud.Color(i)
		}
		switch settings.Format {
		case PLYBinary:
			buf := make([]byte, 12)
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(p.X)))
			binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(p.Y)))
			binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(p.Z)))
			if hasColor {
				buf = append(buf, c.R, c.G, c.B)
			}
			buf = append(buf, state)
			_, writeErr = w.Write(buf)
		case PLYAscii:
			if hasColor {
				_, writeErr = fmt.Fprintf(w, "%f %f %f %d %d %d %d\n", p.X, p.Y, p.Z, c.R, c.G, c.B, state)
			} else {
				_, writeErr = fmt.Fprintf(w, "%f %f %f %d\n", p.X, p.Y, p.Z, state)
			}
		}
		return writeErr == nil
	})
	if writeErr != nil {
		return writeErr
	}
	return w.Flush()
}

type plyProperty struct {
	typ  string
	name string
}

type plyHeader struct {
	format PLYFormat
	count  int
	props  []plyProperty
}

// plyPreallocLimit caps how many points are preallocated from the header's
// declared vertex count alone.
const plyPreallocLimit = 1 << 20

var plyTypeSizes = map[string]int{
	"char": 1, "uchar": 1, "int8": 1, "uint8": 1,
	"short": 2, "ushort": 2, "int16": 2, "uint16": 2,
	"int": 4, "uint": 4, "int32": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

func parsePLYHeader(in *bufio.Reader) (*plyHeader, error) {
	magic, err := in.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "error reading ply magic")
	}
	if strings.TrimSpace(magic) != "ply" {
		return nil, errors.New("not a ply stream")
	}

	header := &plyHeader{format: -1, count: -1}
	inVertex := false
	for {
		line, err := in.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "error reading ply header")
		}
		line = strings.TrimSpace(line)
		tokens := strings.Fields(line)
		if len(tokens) == 0 || tokens[0] == "comment" || tokens[0] == "obj_info" {
			continue
		}
		switch tokens[0] {
		case "format":
			if len(tokens) != 3 {
				return nil, errors.Errorf("malformed format line %q", line)
			}
			switch tokens[1] {
			case "ascii":
				header.format = PLYAscii
			case "binary_little_endian":
				header.format = PLYBinary
			default:
				return nil, errors.Errorf("unsupported ply format %q", tokens[1])
			}
		case "element":
			if len(tokens) != 3 {
				return nil, errors.Errorf("malformed element line %q", line)
			}
			n, err := strconv.Atoi(tokens[2])
			if err != nil || n < 0 {
				return nil, errors.Errorf("invalid element count %q", tokens[2])
			}
			if tokens[1] == "vertex" {
				header.count = n
				inVertex = true
			} else {
				if n > 0 {
					return nil, errors.Errorf("unsupported ply element %q", tokens[1])
				}
				inVertex = false
			}
		case "property":
			if !inVertex {
				continue
			}
			if len(tokens) < 3 {
				return nil, errors.Errorf("malformed property line %q", line)
			}
			if tokens[1] == "list" {
				return nil, errors.New("list properties are not supported")
			}
			if _, ok := plyTypeSizes[tokens[1]]; !ok {
				return nil, errors.Errorf("unsupported property type %q", tokens[1])
			}
			header.props = append(header.props, plyProperty{typ: tokens[1], name: tokens[2]})
		case "end_header":
			if header.format == -1 || header.count == -1 {
				return nil, errors.New("ply header missing format or vertex element")
			}
			return header, nil
		default:
			return nil, errors.Errorf("unexpected ply header line %q", line)
		}
	}
}

// propIndex returns the ordinal of the named vertex property, or -1.
func (h *plyHeader) propIndex(name string) int {
	for i, p := range h.props {
		if p.name == name {
			return i
		}
	}
	return -1
}

// ReadPLY reads a point cloud from a ply stream. x, y, and z are required;
// red/green/blue and the state byte are optional and any other scalar vertex
// properties are skipped.
func ReadPLY(inRaw io.Reader) (PointCloud, error) {
	in := bufio.NewReader(inRaw)
	header, err := parsePLYHeader(in)
	if err != nil {
		return nil, err
	}

	xi, yi, zi := header.propIndex("x"), header.propIndex("y"), header.propIndex("z")
	if xi == -1 || yi == -1 || zi == -1 {
		return nil, errors.New("ply vertex element missing x, y, or z")
	}
	ri, gi, bi := header.propIndex("red"), header.propIndex("green"), header.propIndex("blue")
	si := header.propIndex("state")
	hasColor := ri != -1 && gi != -1 && bi != -1

	// the declared count is only a claim until the body delivers the rows;
	// bound the upfront allocation and let Append grow past it
	prealloc := header.count
	if prealloc > plyPreallocLimit {
		prealloc = plyPreallocLimit
	}
	cloud := NewWithPrealloc(prealloc, hasColor)
	switch header.format {
	case PLYAscii:
		err = readPLYAscii(in, header, cloud, xi, yi, zi, ri, gi, bi, si)
	case PLYBinary:
		err = readPLYBinary(in, header, cloud, xi, yi, zi, ri, gi, bi, si)
	}
	if err != nil {
		return nil, err
	}
	return cloud, nil
}

func readPLYAscii(in *bufio.Reader, header *plyHeader, cloud PointCloud, xi, yi, zi, ri, gi, bi, si int) error {
	for i := 0; i < header.count; i++ {
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return errors.Wrapf(err, "error reading vertex %d", i)
		}
		tokens := strings.Fields(line)
		if len(tokens) != len(header.props) {
			return errors.Errorf("vertex %d has %d fields, want %d", i, len(tokens), len(header.props))
		}
		vals := make([]float64, len(tokens))
		for j, token := range tokens {
			vals[j], err = strconv.ParseFloat(token, 64)
			if err != nil {
				return errors.Errorf("invalid vertex %d field %q", i, token)
			}
		}
		appendPLYPoint(cloud, vals, xi, yi, zi, ri, gi, bi, si)
	}
	return nil
}

func readPLYBinary(in *bufio.Reader, header *plyHeader, cloud PointCloud, xi, yi, zi, ri, gi, bi, si int) error {
	rowSize := 0
	offsets := make([]int, len(header.props))
	for j, p := range header.props {
		offsets[j] = rowSize
		rowSize += plyTypeSizes[p.typ]
	}

	row := make([]byte, rowSize)
	vals := make([]float64, len(header.props))
	for i := 0; i < header.count; i++ {
		if _, err := io.ReadFull(in, row); err != nil {
			return errors.Wrapf(err, "error reading vertex %d", i)
		}
		for j, p := range header.props {
			vals[j] = decodePLYScalar(p.typ, row[offsets[j]:])
		}
		appendPLYPoint(cloud, vals, xi, yi, zi, ri, gi, bi, si)
	}
	return nil
}

func decodePLYScalar(typ string, buf []byte) float64 {
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0]))
	case "uchar", "uint8":
		return float64(buf[0])
	case "short", "int16":
		return float64(int16(binary.LittleEndian.Uint16(buf)))
	case "ushort", "uint16":
		return float64(binary.LittleEndian.Uint16(buf))
	case "int", "int32":
		return float64(int32(binary.LittleEndian.Uint32(buf)))
	case "uint", "uint32":
		return float64(binary.LittleEndian.Uint32(buf))
	case "float", "float32":
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	case "double", "float64":
		return math.Float64frombits(binary.LittleEndian.Uint64(buf))
	}
	return 0
}

func appendPLYPoint(cloud PointCloud, vals []float64, xi, yi, zi, ri, gi, bi, si int) {
	pos := r3.Vector{X: vals[xi], Y: vals[yi], Z: vals[zi]}
	var c color.NRGBA
	if ri != -1 && gi != -1 && bi != -1 {
		c = color.NRGBA{R: uint8(vals[ri]), G: uint8(vals[gi]), B: uint8(vals[bi]), A: 255}
	}
	var state byte
	if si != -1 {
		state = byte(vals[si])
	}
	cloud.Append(pos, c, state)
}
