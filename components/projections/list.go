package projections

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/epsg_directory.txt
var dataFS embed.FS

const defaultListPath = "data/epsg_directory.txt"

// System describes one coordinate reference system entry. Unit records the
// axis unit ("degree", "metre", "foot") so widgets can hint at coordinate
// formats.
type System struct {
	SRID int
	Name string
	Unit string
}

// Code returns the EPSG-style identifier for the system.
func (s System) Code() string {
	return "EPSG:" + strconv.Itoa(s.SRID)
}

var (
	defaultOnce    sync.Once
	defaultSystems []System
	defaultErr     error
)

func DefaultSystems() ([]System, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		systems, err := LoadSystems(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultSystems = systems
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]System{}, defaultSystems...), nil
}

// LoadSystems parses srid|name|unit lines, skipping blanks and # comments.
// Duplicate SRIDs keep the first occurrence; output is sorted by SRID.
func LoadSystems(r io.Reader) ([]System, error) {
	if r == nil {
		return nil, fmt.Errorf("projections: missing reader")
	}

	scanner := bufio.NewScanner(r)
	systems := make([]System, 0, 256)
	seen := map[int]struct{}{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "|", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("projections: malformed entry %q", line)
		}
		srid, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || srid <= 0 {
			return nil, fmt.Errorf("projections: invalid srid in entry %q", line)
		}
		name := strings.TrimSpace(parts[1])
		if name == "" {
			return nil, fmt.Errorf("projections: missing name in entry %q", line)
		}
		unit := ""
		if len(parts) == 3 {
			unit = strings.TrimSpace(parts[2])
		}

		if _, ok := seen[srid]; ok {
			continue
		}
		seen[srid] = struct{}{}
		systems = append(systems, System{SRID: srid, Name: name, Unit: unit})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(systems, func(i, j int) bool { return systems[i].SRID < systems[j].SRID })
	return systems, nil
}
