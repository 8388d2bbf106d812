package graph

// License is one of the licenses a graph may be published under.
type License struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

var licenses = []License{
	{"GNU-GPL", "GNU General Public License", "https://www.gnu.org/licenses/gpl.html"},
	{"GNU-FDL", "GNU Free Documentation License", "https://www.gnu.org/licenses/fdl.html"},
	{"CC-BY-SA", "Creative Commons Attribution-ShareAlike", "https://creativecommons.org/licenses/by-sa/3.0/"},
	{"CC-BY", "Creative Commons Attribution", "https://creativecommons.org/licenses/by/3.0/"},
	{"CC-BY-NC-SA", "Creative Commons Attribution-NonCommercial-ShareAlike", "https://creativecommons.org/licenses/by-nc-sa/3.0/"},
	{"CC-BY-NC-ND", "Creative Commons Attribution-NonCommercial-NoDerivs", "https://creativecommons.org/licenses/by-nc-nd/3.0/"},
	{"CC-0", "Creative Commons Zero (public domain)", "https://creativecommons.org/publicdomain/zero/1.0/"},
	{"COPYRIGHT", "All rights reserved", ""},
	{"WTFPL", "Do What The Fuck You Want To Public License", "http://www.wtfpl.net/"},
}

// Licenses returns the known licenses in display order.
func Licenses() []License {
	return append([]License(nil), licenses...)
}

// LookupLicense finds a license by id.
func LookupLicense(id string) (License, bool) {
	for _, l := range licenses {
		if l.ID == id {
			return l, true
		}
	}
	return License{}, false
}

// palette is the set of predefined vertex colours, "R,G,B".
var palette = []string{
	"223,87,69", "40,207,174", "99,129,208", "138,219,76",
	"205,167,31", "211,81,177", "93,161,72",
}

// Palette returns the predefined vertex colours.
func Palette() []string {
	return append([]string(nil), palette...)
}

// PaletteColor picks a predefined colour by index, wrapping around.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}
