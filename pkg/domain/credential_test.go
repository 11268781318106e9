package domain

import (
	"fmt"
	"strings"
	"testing"
)

func TestCredential_Redaction(t *testing.T) {
	t.Run("Stringで生トークンが漏れないのだ", func(t *testing.T) {
		cred := Credential("pst-secret-token-value")

		formatted := fmt.Sprintf("%v / %s / %+v", cred, cred, cred)
		if strings.Contains(formatted, "secret-token-value") {
			t.Errorf("トークンが表示に漏れているのだ: %s", formatted)
		}
		if !strings.Contains(formatted, "[redacted]") {
			t.Errorf("伏せ字になっていないのだ: %s", formatted)
		}
	})

	t.Run("Tokenでのみ生値を取り出せるのだ", func(t *testing.T) {
		cred := Credential("abc123")
		if cred.Token() != "abc123" {
			t.Errorf("Token() が生値を返していないのだ: %s", cred.Token())
		}
	})

	t.Run("空トークンの表示", func(t *testing.T) {
		var cred Credential
		if !cred.IsEmpty() {
			t.Error("空のはずなのだ")
		}
		if cred.String() != "(empty)" {
			t.Errorf("unexpected: %s", cred.String())
		}
	})
}

func TestOutcome_Failed(t *testing.T) {
	t.Run("Errがあれば失敗扱いになるのだ", func(t *testing.T) {
		o := Outcome{Err: fmt.Errorf("boom")}
		if !o.Failed() {
			t.Error("Failed() は true であるべきなのだ")
		}
	})

	t.Run("画像があってErrがなければ成功なのだ", func(t *testing.T) {
		o := Outcome{Images: []DecodedImage{{Data: []byte{0x89}, MimeType: "image/png"}}}
		if o.Failed() {
			t.Error("Failed() は false であるべきなのだ")
		}
	})
}
