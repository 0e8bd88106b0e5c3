// Детерминированная пост-обработка ответов модели.
package compose

import "regexp"

// Модель периодически галлюцинирует неправильный базовый домен
// и устаревшие cache-сегменты в URL картинок. Пост-обработка обязана
// отработать на каждом составленном ответе, независимо от намерения.
var (
	wrongDomainRe = regexp.MustCompile(`https://(www\.)?crustaging\.com`)
	imageSizeRe   = regexp.MustCompile(`/image/50x/`)
	cacheKeyRe    = regexp.MustCompile(`/cache/\d+/`)
)

// Канонические значения подстановки.
const (
	canonicalBase  = "https://uk.crustaging.com"
	preferredSize  = "/image/750x/"
	canonicalCache = "/cache/1/"
)

// PostProcess нормализует URL в тексте ответа.
//
// Правила:
//  1. crustaging.com / www.crustaging.com → uk.crustaging.com
//  2. /image/50x/ → /image/750x/ (предпочитаемый размер)
//  3. /cache/<digits>/ → /cache/1/ (стабильный cache-токен)
func PostProcess(text string) string {
	text = wrongDomainRe.ReplaceAllString(text, canonicalBase)
	text = imageSizeRe.ReplaceAllString(text, preferredSize)
	text = cacheKeyRe.ReplaceAllString(text, canonicalCache)
	return text
}
