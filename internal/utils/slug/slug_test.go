package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Chevrolet", "chevrolet"},
		{"spaces to hyphens", "Jetta GLI 2.0", "jetta-gli-2-0"},
		{"accents stripped", "Edición Especial", "edicion-especial"},
		{"slashes collapse", "Onix / LT", "onix-lt"},
		{"runs collapse", "A  --  B", "a-b"},
		{"trimmed hyphens", "  ¡Versa!  ", "versa"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeIsStable(t *testing.T) {
	// Slugging an already-slugged value must be a fixed point, otherwise
	// find-before-create would miss previously created terms.
	in := "Nissan Versa Advance"
	once := Make(in)
	assert.Equal(t, once, Make(once))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Chevrolet_Onix_Oficial", Filename("Chevrolet Onix Oficial"))
	assert.Equal(t, "a-b_c.webp", Filename("a-b/c.webp"))
}
