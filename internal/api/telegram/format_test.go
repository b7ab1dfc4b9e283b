package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"agri-assistant/internal/domain/entity"
)

func TestPlainText(t *testing.T) {
	text := plainText("<h2>रोगको नाम</h2>\n<ol>\n<li><strong>पात डढुवा</strong></li>\n<li>ढुसी</li>\n</ol>\n<p>अन्त्य</p>\n")
	require.Contains(t, text, "रोगको नाम\n")
	require.Contains(t, text, "• पात डढुवा\n")
	require.Contains(t, text, "• ढुसी\n")
	require.True(t, strings.HasSuffix(text, "अन्त्य"))
	require.NotContains(t, text, "<")
}

func TestFormatDiagnosis(t *testing.T) {
	msgs := formatDiagnosis(entity.NewDiagnosis(nil))
	require.Equal(t, []string{msgNoDisease}, msgs)

	msgs = formatDiagnosis(entity.NoFileDiagnosis())
	require.Equal(t, []string{msgProcessingError}, msgs)

	msgs = formatDiagnosis(entity.NewDiagnosis([]entity.AdvisoryResult{
		{Status: 200, ClassName: "Leaf Blight", Summary: "<p>एक</p>", Confidence: 0.91},
		{Status: 200, ClassName: "Leaf Blight", Summary: "<p>दुई</p>", Confidence: 0.77},
	}))
	require.Len(t, msgs, 2)
	require.Equal(t, "🌿 1/2: Leaf Blight (91%)\n\nएक", msgs[0])
	require.Equal(t, "🌿 2/2: Leaf Blight (77%)\n\nदुई", msgs[1])
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))

	long := strings.Repeat("क", 5000)
	cut := truncate(long, maxMessageLen)
	require.Equal(t, maxMessageLen, utf8.RuneCountInString(cut))
	require.True(t, strings.HasSuffix(cut, "…"))
}
