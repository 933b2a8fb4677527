package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSingleLineTruncatesTrailingCRLF(t *testing.T) {
	got := Clean("12.3,45.6\r\n", false, ",", "")
	assert.Equal(t, "12.3,45.6", got)
}

func TestCleanSingleLinePreservesLeadingControlByte(t *testing.T) {
	// A CR/NL at index 0 is left in place (Open Question 2): this
	// matches the original byte-for-byte.
	got := Clean("\r12.3,45.6", false, ",", "")
	assert.Equal(t, "\r12.3,45.6", got)
}

func TestCleanMultilineJoinsSentencesWithDelimiter(t *testing.T) {
	got := Clean("alpha\r\nbeta\r\ngamma\r\n", true, ",", "\r\n")
	assert.Equal(t, "alpha,beta,gamma", got)
}

func TestCleanMultilineWithoutTrailingDelimiterDropsPartialTail(t *testing.T) {
	got := Clean("alpha\r\nbeta\r\ngamma", true, ",", "\r\n")
	assert.Equal(t, "alpha,beta", got)
}
