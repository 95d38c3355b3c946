package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newTestSeeder() *Seeder {
	return NewSeeder(&gorm.DB{})
}

func TestUsername_Lowercase(t *testing.T) {
	s := newTestSeeder()
	for i := 0; i < 50; i++ {
		name := s.username("Alice", "Smith")
		assert.Equal(t, strings.ToLower(name), name)
		assert.Contains(t, name, "alice")
	}
}

func TestSentence_EndsWithPunctuation(t *testing.T) {
	s := newTestSeeder()
	for i := 0; i < 50; i++ {
		sentence := s.sentence()
		assert.NotEmpty(t, sentence)
		last := sentence[len(sentence)-1]
		assert.True(t, last == '.' || last == '!')
	}
}

func TestParagraph_SentenceCount(t *testing.T) {
	s := newTestSeeder()
	p := s.paragraph(3)
	assert.NotEmpty(t, p)
	assert.False(t, strings.HasSuffix(p, " "))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Hikers", titleCase("hikers"))
	assert.Equal(t, "", titleCase(""))
}
