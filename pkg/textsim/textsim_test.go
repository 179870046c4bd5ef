package textsim

import (
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"João", "joao"},
		{"joao", "joao"},
		{"  MARIA da Conceição  ", "maria da conceicao"},
		{"José-da Silva!", "joseda silva"},
		{"111.222.333-44", "11122233344"},
		{"Ñuñez\tÁvila", "nunezavila"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	f := gofakeit.New(42)
	inputs := []string{"João", "Ana Lúcia d'Ávila", "  Çé  ", "İstanbul"}
	for i := 0; i < 50; i++ {
		inputs = append(inputs, f.Name())
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestNormalize_CaseAndDiacriticInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("João"), Normalize("joao"))
	assert.Equal(t, Normalize("CONCEIÇÃO"), Normalize("conceicao"))
}

func TestSimilarity_Identity(t *testing.T) {
	f := gofakeit.New(7)
	for i := 0; i < 50; i++ {
		name := f.Name()
		assert.Equal(t, 1.0, Similarity(name, name), "name %q", name)
	}
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("...", "  "))
}

func TestSimilarity_Symmetric(t *testing.T) {
	f := gofakeit.New(99)
	for i := 0; i < 100; i++ {
		a, b := f.Name(), f.Name()
		assert.Equal(t, Similarity(a, b), Similarity(b, a), "%q vs %q", a, b)
	}
}

func TestSimilarity_Range(t *testing.T) {
	f := gofakeit.New(3)
	for i := 0; i < 100; i++ {
		s := Similarity(f.Name(), f.LastName())
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Equal(t, 0.0, Similarity("abc", ""))
}

func TestSimilarity_OneEdit(t *testing.T) {
	s := Similarity("Maria Silva", "Mario Silva")
	assert.InDelta(t, 10.0/11.0, s, 1e-9)
	assert.Equal(t, 1, Distance("Maria Silva", "Mario Silva"))
}

func TestIsSimilar(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"one edit", "Maria Silva", "Mario Silva", true},
		{"containment", "João", "João Silva", true},
		{"containment reversed", "joao silva", "JOÃO", true},
		{"different", "Pedro Oliveira", "Ana Costa", false},
		{"accents only", "José da Silva", "Jose da Silva", true},
		{"one side empty", "", "Ana", false},
		{"both empty", "", "", true},
		{"punctuation empty side", "---", "Ana", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSimilar(tt.a, tt.b))
			assert.Equal(t, tt.want, IsSimilar(tt.b, tt.a))
		})
	}
}

func TestIsSimilarWithThreshold_Boundary(t *testing.T) {
	// "abcde" vs "abcdx": 4/5 = 0.8 exactly.
	require.InDelta(t, 0.8, Similarity("abcde", "abcdx"), 1e-9)
	assert.True(t, IsSimilarWithThreshold("abcde", "abcdx", 0.8))
	assert.False(t, IsSimilarWithThreshold("abcde", "abcdx", 0.81))
}

func TestNormalize_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := Normalize("Conceição Ávila"); got != "conceicao avila" {
					t.Errorf("got %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
