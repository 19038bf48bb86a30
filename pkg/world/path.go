package world

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
)

// PathSeparator joins segments in the display form of a LocationPath.
const PathSeparator = "/"

// LocationPath addresses a node in a world: a top-level location followed by
// zero or more sublocation/room names.
type LocationPath struct {
	World    string
	Segments []string
}

// NewPath builds a path in world from the given segments.
func NewPath(world string, segments ...string) LocationPath {
	return LocationPath{World: world, Segments: append([]string(nil), segments...)}
}

// ParsePath splits a "location/sublocation" string into a path.
func ParsePath(world, s string) LocationPath {
	var segs []string
	for _, part := range strings.Split(s, PathSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			segs = append(segs, p)
		}
	}
	return LocationPath{World: world, Segments: segs}
}

// IsZero reports whether the path points nowhere.
func (p LocationPath) IsZero() bool {
	return len(p.Segments) == 0
}

// Leaf returns the innermost segment.
func (p LocationPath) Leaf() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// String returns the "location/sublocation" form.
func (p LocationPath) String() string {
	return strings.Join(p.Segments, PathSeparator)
}

// Child returns a new path one level deeper.
func (p LocationPath) Child(name string) LocationPath {
	segs := make([]string, 0, len(p.Segments)+1)
	segs = append(segs, p.Segments...)
	return LocationPath{World: p.World, Segments: append(segs, name)}
}

// Parent returns the enclosing path, or false at the top level.
func (p LocationPath) Parent() (LocationPath, bool) {
	if len(p.Segments) < 2 {
		return LocationPath{}, false
	}
	return NewPath(p.World, p.Segments[:len(p.Segments)-1]...), true
}

// Equal compares worlds and segments by normalized name.
func (p LocationPath) Equal(o LocationPath) bool {
	if !names.Equal(p.World, o.World) || len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if !names.Equal(p.Segments[i], o.Segments[i]) {
			return false
		}
	}
	return true
}

type pathJSON struct {
	World    string `json:"world"`
	Location string `json:"location"`
}

// MarshalJSON writes {"world": ..., "location": "a/b"}.
func (p LocationPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(pathJSON{World: p.World, Location: p.String()})
}

// UnmarshalJSON accepts the structured object, the legacy
// {"world", "location/sublocation"} object, or a bare string. A bare string
// has no world; callers fill it in from context.
func (p *LocationPath) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*p = ParsePath("", bare)
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("location: not an object or string: %s", string(data))
	}
	var world, loc string
	if raw, ok := obj["world"]; ok {
		if err := json.Unmarshal(raw, &world); err != nil {
			return fmt.Errorf("location world: %w", err)
		}
	}
	for _, key := range []string{"location", "location/sublocation"} {
		if raw, ok := obj[key]; ok {
			if err := json.Unmarshal(raw, &loc); err != nil {
				return fmt.Errorf("location %s: %w", key, err)
			}
			break
		}
	}
	*p = ParsePath(world, loc)
	return nil
}
