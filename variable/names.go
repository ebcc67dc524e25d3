package variable

import "strconv"

const nameLetters = "ijkmnopqrstuvwxyzabcdefgh"

// GenerateUniqueName returns a name not used by any variable in m, of any
// type: i, j, k, ... h, then i1, j1, ... and so on.
func GenerateUniqueName(m *Map) string {
	for suffix := 0; ; suffix++ {
		for _, letter := range nameLetters {
			name := string(letter)
			if suffix > 0 {
				name += strconv.Itoa(suffix)
			}
			if _, taken := m.byName[foldName(name)]; !taken {
				return name
			}
		}
	}
}
