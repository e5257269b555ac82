package auth

import (
	"fmt"
	"time"
)

func loginCodeMessage(code string, ttl time.Duration, repeat bool) string {
	title := "Tasdiqlash kodi"
	if repeat {
		title = "Yangi tasdiqlash kodi"
	}
	return fmt.Sprintf("✅ *%s*\n\nSizning OTP kodingiz: `%s`\n\n⚠️ Bu kod *%s* amal qiladi.\n🔒 Kodni hech kimga bermang!\n\nKodni veb-saytda kiriting.",
		title, code, humanTTL(ttl))
}

func humanTTL(ttl time.Duration) string {
	if ttl >= time.Minute && ttl%time.Minute == 0 {
		return fmt.Sprintf("%d daqiqa", int(ttl/time.Minute))
	}
	return fmt.Sprintf("%d soniya", int(ttl/time.Second))
}
