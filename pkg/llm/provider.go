// Интерфейс Провайдера через который работает всё приложение.

package llm

import "context"

// Provider — абстракция над LLM API.
//
// Все потребители (классификатор, экстрактор, композер, агент) работают
// только через этот интерфейс. Ответ модели — недоверенный сигнал:
// каждый потребитель обязан нормализовать и валидировать его сам.
type Provider interface {
	// Generate принимает контекст и историю сообщений.
	// Возвращает ответ модели в унифицированном формате Message.
	// tools — опциональный список определений функций
	// (если провайдер поддерживает Function Calling).
	Generate(ctx context.Context, messages []Message, tools ...any) (Message, error)
}

// Ask — удобный хелпер для одиночного запроса "prompt -> text".
//
// Оборачивает prompt в одно user сообщение и возвращает содержимое ответа.
// Используется классификатором и экстрактором, которым не нужна история.
func Ask(ctx context.Context, p Provider, prompt string) (string, error) {
	resp, err := p.Generate(ctx, []Message{{Role: RoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
