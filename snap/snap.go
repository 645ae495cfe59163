/*
 * snap.go, part of goewald.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package snap

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	ewald "github.com/rmera/goewald"
	v3 "github.com/rmera/goewald/v3"
)

//Snapshot is one full system configuration. ChargeB, SqrtC6A and SqrtC6B
//may be nil, with the same meaning as in ewald.NewSystem.
type Snapshot struct {
	X       *v3.Matrix
	ChargeA []float64
	ChargeB []float64
	SqrtC6A []float64
	SqrtC6B []float64
	Excl    ewald.Exclusions
	Box     ewald.Box
}

//System builds the (validated) read-only system description from the
//snapshot's per-atom data.
func (s *Snapshot) System() (*ewald.System, error) {
	sys, err := ewald.NewSystem(s.ChargeA, s.ChargeB, s.SqrtC6A, s.SqrtC6B, s.Excl)
	if err != nil {
		return nil, errDecorate(err, "snap.System")
	}
	return sys, nil
}

//the per-atom column layout, recorded in the header so a reader knows
//which optional slices are present
func (s *Snapshot) fields() string {
	f := "xq"
	if s.ChargeB != nil {
		f += "Q"
	}
	if s.SqrtC6A != nil {
		f += "c"
	}
	if s.SqrtC6B != nil {
		f += "C"
	}
	return f
}

func newCompressor(name string, w io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case 'r':
		return flate.NewWriter(w, flate.BestCompression)
	default:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

//zstd.Decoder has a Close without an error, so it misses io.ReadCloser
//by a signature.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

func newDecompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	default:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdql{d.Close, d}, nil
	}
}

//Write stores the snapshot in the named file, compressed according to the
//filename (see the package documentation).
func Write(name string, s *Snapshot) error {
	if s == nil || s.X == nil || s.ChargeA == nil {
		return Error{"nil snapshot, coordinates or charges", name, []string{"snap.Write"}}
	}
	n := len(s.ChargeA)
	if s.X.NVecs() != n {
		return Error{fmt.Sprintf("%d coordinates for %d charges", s.X.NVecs(), n), name, []string{"snap.Write"}}
	}
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), name, []string{"snap.Write"}}
	}
	defer f.Close()
	h, err := newCompressor(name, f)
	if err != nil {
		return Error{err.Error(), name, []string{"snap.Write"}}
	}
	w := bufio.NewWriter(h)
	fmt.Fprintf(w, "fields=%s\n", s.fields())
	fmt.Fprintf(w, "** %d\n", n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%.17g %.17g %.17g %.17g", s.X.At(i, 0), s.X.At(i, 1), s.X.At(i, 2), s.ChargeA[i])
		if s.ChargeB != nil {
			fmt.Fprintf(w, " %.17g", s.ChargeB[i])
		}
		if s.SqrtC6A != nil {
			fmt.Fprintf(w, " %.17g", s.SqrtC6A[i])
		}
		if s.SqrtC6B != nil {
			fmt.Fprintf(w, " %.17g", s.SqrtC6B[i])
		}
		fmt.Fprintln(w)
	}
	//exclusions, one line per atom with any partners: "i: j k ..."
	if s.Excl.Index != nil {
		for i := 0; i < n; i++ {
			if s.Excl.Index[i] == s.Excl.Index[i+1] {
				continue
			}
			fmt.Fprintf(w, "%d:", i)
			for k := s.Excl.Index[i]; k < s.Excl.Index[i+1]; k++ {
				fmt.Fprintf(w, " %d", s.Excl.Atoms[k])
			}
			fmt.Fprintln(w)
		}
	}
	d := s.Box.Diag()
	fmt.Fprintf(w, "* %.17g %.17g %.17g\n", d[0], d[1], d[2])
	if err = w.Flush(); err != nil {
		return Error{err.Error(), name, []string{"snap.Write"}}
	}
	if err = h.Close(); err != nil {
		return Error{err.Error(), name, []string{"snap.Write"}}
	}
	return nil
}

//Read loads a snapshot written by Write.
func Read(name string) (*Snapshot, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"snap.Read"}}
	}
	defer f.Close()
	d, err := newDecompressor(name, bufio.NewReader(f))
	if err != nil {
		return nil, Error{err.Error(), name, []string{"snap.Read"}}
	}
	defer d.Close()
	h := bufio.NewReader(d)
	fields := "xq"
	n := -1
	for {
		str, err := h.ReadString('\n')
		if err != nil {
			return nil, Error{"truncated header: " + err.Error(), name, []string{"snap.Read"}}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return nil, Error{"atom count line without a count", name, []string{"snap.Read"}}
			}
			if n, err = strconv.Atoi(nat[1]); err != nil {
				return nil, Error{"unreadable atom count: " + err.Error(), name, []string{"snap.Read"}}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, Error{"malformed header line: " + str, name, []string{"snap.Read"}}
		}
		if kv[0] == "fields" {
			fields = kv[1]
		}
	}
	if n < 0 {
		return nil, Error{"no atom count in header", name, []string{"snap.Read"}}
	}
	s := &Snapshot{X: v3.Zeros(n), ChargeA: make([]float64, n)}
	if strings.Contains(fields, "Q") {
		s.ChargeB = make([]float64, n)
	}
	if strings.Contains(fields, "c") {
		s.SqrtC6A = make([]float64, n)
	}
	if strings.Contains(fields, "C") {
		s.SqrtC6B = make([]float64, n)
	}
	want := 4
	for _, sl := range [][]float64{s.ChargeB, s.SqrtC6A, s.SqrtC6B} {
		if sl != nil {
			want++
		}
	}
	for i := 0; i < n; i++ {
		str, err := h.ReadString('\n')
		if err != nil {
			return nil, Error{fmt.Sprintf("truncated at atom %d: %s", i, err.Error()), name, []string{"snap.Read"}}
		}
		cols := strings.Fields(str)
		if len(cols) != want {
			return nil, Error{fmt.Sprintf("atom %d has %d columns, want %d", i, len(cols), want), name, []string{"snap.Read"}}
		}
		vals := make([]float64, want)
		for j, c := range cols {
			if vals[j], err = strconv.ParseFloat(c, 64); err != nil {
				return nil, Error{fmt.Sprintf("atom %d column %d: %s", i, j, err.Error()), name, []string{"snap.Read"}}
			}
		}
		s.X.SetVec(i, [3]float64{vals[0], vals[1], vals[2]})
		s.ChargeA[i] = vals[3]
		next := 4
		for _, sl := range [][]float64{s.ChargeB, s.SqrtC6A, s.SqrtC6B} {
			if sl != nil {
				sl[i] = vals[next]
				next++
			}
		}
	}
	//exclusion lines until the box mark
	partners := make([][]int, n)
	for {
		str, err := h.ReadString('\n')
		if err != nil {
			return nil, Error{"missing box line: " + err.Error(), name, []string{"snap.Read"}}
		}
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "*") {
			cols := strings.Fields(str)
			if len(cols) != 4 {
				return nil, Error{"box line needs three edge lengths", name, []string{"snap.Read"}}
			}
			edges := make([]float64, 3)
			for j, c := range cols[1:] {
				if edges[j], err = strconv.ParseFloat(c, 64); err != nil {
					return nil, Error{"unreadable box edge: " + err.Error(), name, []string{"snap.Read"}}
				}
			}
			if s.Box, err = ewald.NewBox(edges); err != nil {
				return nil, errDecorate(err, "snap.Read")
			}
			break
		}
		head, tail, found := strings.Cut(str, ":")
		if !found {
			return nil, Error{"malformed exclusion line: " + str, name, []string{"snap.Read"}}
		}
		i, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil || i < 0 || i >= n {
			return nil, Error{"bad exclusion owner in: " + str, name, []string{"snap.Read"}}
		}
		for _, c := range strings.Fields(tail) {
			j, err := strconv.Atoi(c)
			if err != nil || j < 0 || j >= n {
				return nil, Error{"bad exclusion partner in: " + str, name, []string{"snap.Read"}}
			}
			partners[i] = append(partners[i], j)
		}
	}
	s.Excl.Index = make([]int, n+1)
	for i, l := range partners {
		s.Excl.Index[i+1] = s.Excl.Index[i] + len(l)
		s.Excl.Atoms = append(s.Excl.Atoms, l...)
	}
	return s, nil
}

//Error carries the offending filename along with the usual decoration
//trail.
type Error struct {
	message  string
	filename string
	deco     []string
}

func (err Error) Error() string {
	return fmt.Sprintf("snapshot file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file the failing snapshot was associated with.
func (err Error) FileName() string { return err.filename }

//errDecorate asserts that err implements ewald.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(ewald.Error)
	err2.Decorate(caller)
	return err2
}
