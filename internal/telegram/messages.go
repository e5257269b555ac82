package telegram

import (
	"fmt"
	"strings"
)

const (
	shareContactButton = "📱 Telefon raqamni yuborish"

	helpText = "ℹ️ *Yordam*\n\n" +
		"/start - Boshlash va telefon raqamni yuborish\n" +
		"/otp - Yangi kirish kodini olish\n" +
		"/help - Yordam\n\n" +
		"Kirish kodi faqat bir marta ishlatiladi va qisqa muddat amal qiladi."
	foreignContactText = "❌ Iltimos, faqat o'zingizning telefon raqamingizni yuboring."
	notRegisteredText  = "❌ Siz hali ro'yxatdan o'tmagansiz. Iltimos, /start buyrug'ini bosing."
	genericErrorText   = "❌ Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring."
	unknownText        = "Kirish kodini olish uchun /otp buyrug'ini yuboring. Yordam: /help"
)

// markdownEscaper escapes the characters that open an entity in legacy Markdown.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func welcomeText(firstName string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		firstName = "do'stim"
	}
	return fmt.Sprintf("👋 Assalomu alaykum, %s!\n\n*Sellers Pro* platformasiga xush kelibsiz.\n\nKirish kodini olish uchun telefon raqamingizni yuboring 👇", markdownEscaper.Replace(firstName))
}
