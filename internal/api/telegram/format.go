package telegram

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"agri-assistant/internal/domain/entity"
)

// maxMessageLen: лимит Telegram на длину сообщения в символах.
const maxMessageLen = 4096

var blankLines = regexp.MustCompile(`\n{3,}`)

// plainText переводит HTML рекомендаций в обычный текст с переносами между блоками.
func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, br").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("• ")
	})
	text := blankLines.ReplaceAllString(doc.Text(), "\n\n")
	return strings.TrimSpace(text)
}

// formatDiagnosis готовит сообщения для чата: по одному на каждую детекцию.
func formatDiagnosis(diag *entity.Diagnosis) []string {
	if diag.Failure != nil {
		if diag.Failure.Error == entity.MsgNoDiseaseFound {
			return []string{msgNoDisease}
		}
		return []string{msgProcessingError}
	}

	messages := make([]string, 0, len(diag.Results))
	for i, r := range diag.Results {
		header := fmt.Sprintf("🌿 %d/%d: %s (%.0f%%)", i+1, len(diag.Results), r.ClassName, r.Confidence*100)
		messages = append(messages, truncate(header+"\n\n"+plainText(r.Summary), maxMessageLen))
	}
	return messages
}

// truncate обрезает строку до limit символов, не разрывая руны
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
