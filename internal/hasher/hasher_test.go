package hasher

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type HasherSuite struct {
	suite.Suite
}

func TestHasherSuite(t *testing.T) {
	suite.Run(t, new(HasherSuite))
}

func (s *HasherSuite) TestNewSalt() {
	a, err := NewSalt()
	s.Require().NoError(err)
	b, err := NewSalt()
	s.Require().NoError(err)

	s.Len(a, SaltBytes)
	s.NotEqual(a, b)
}

func (s *HasherSuite) TestSHA256ChainDeterministic() {
	salt := []byte("0123456789abcdef")

	first := SHA256Chain("client-123", salt, 1000)
	second := SHA256Chain("client-123", salt, 1000)
	s.Equal(first, second)
	s.Len(first, 64)

	s.Run("different input diverges", func() {
		s.NotEqual(first, SHA256Chain("client-124", salt, 1000))
	})

	s.Run("different salt diverges", func() {
		s.NotEqual(first, SHA256Chain("client-123", []byte("fedcba9876543210"), 1000))
	})

	s.Run("different iteration count diverges", func() {
		s.NotEqual(first, SHA256Chain("client-123", salt, 1001))
	})
}

func (s *HasherSuite) TestBcryptRoundtrip() {
	hash, err := BcryptHash("client-123")
	s.Require().NoError(err)

	s.True(BcryptVerify(hash, "client-123"))
	s.False(BcryptVerify(hash, "client-124"))
}

func (s *HasherSuite) TestPseudonymizerStable() {
	salt := []byte("0123456789abcdef")
	p := NewPseudonymizer(salt)
	p.iterations = 100

	s.Equal(p.Pseudonym("client-123"), p.Pseudonym("client-123"))
	s.NotEqual(p.Pseudonym("client-123"), p.Pseudonym("client-456"))
}
