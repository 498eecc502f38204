package main

import (
	"encoding/json"
	"html/template"
	"mime"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

func loadTemplates(t *testing.T) map[string]*template.Template {
	t.Helper()

	templates := map[string]*template.Template{}
	for typ, kind := range mailKinds {
		// 测试在 cmd/mail 目录下运行
		tmpl, err := template.ParseFiles(filepath.Join("..", "..", kind.template))
		require.NoError(t, err, typ)
		templates[typ] = tmpl
	}
	return templates
}

// 消息经过 json 往返后 Data 变为 map，模板必须能够处理这种形式
func decode(t *testing.T, m domain.MailMessage) domain.MailMessage {
	t.Helper()

	b, err := json.Marshal(m)
	require.NoError(t, err)

	out := domain.MailMessage{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestBuildMail(t *testing.T) {
	templates := loadTemplates(t)

	messages := []domain.MailMessage{
		{
			Type: "create_user",
			To:   "zhangsan@example.com",
			Data: domain.CreateUserMailData{FullName: "张三", Username: "zhangsan", Password: "secret"},
		},
		{
			Type: "reset_password",
			To:   "zhangsan@example.com",
			Data: domain.ResetPasswordMailData{FullName: "张三", OTP: "123456", Expiration: 15},
		},
		{
			Type: "schedule_ready",
			To:   "zhangsan@example.com",
			Data: domain.ScheduleReadyMailData{FullName: "张三", TournamentName: "新生杯", Rounds: 3, Matches: 6, Fitness: 1},
		},
	}

	for _, m := range messages {
		t.Run(m.Type, func(t *testing.T) {
			msg, err := buildMail("noreply@example.com", templates, decode(t, m))
			require.NoError(t, err)

			// 主题按 RFC 2047 编码保存，需要先解码
			subjects := msg.GetGenHeader(mail.HeaderSubject)
			require.Len(t, subjects, 1)
			subject, err := new(mime.WordDecoder).DecodeHeader(subjects[0])
			require.NoError(t, err)
			assert.Equal(t, mailKinds[m.Type].subject, subject)

			rcpts, err := msg.GetRecipients()
			require.NoError(t, err)
			assert.Equal(t, []string{"zhangsan@example.com"}, rcpts)
		})
	}
}

func TestBuildMailRejectsUnknownType(t *testing.T) {
	_, err := buildMail("noreply@example.com", loadTemplates(t), domain.MailMessage{Type: "change_email", To: "a@example.com"})
	assert.Error(t, err)
}

func TestBuildMailRejectsBadRecipient(t *testing.T) {
	m := domain.MailMessage{Type: "create_user", To: "not-an-address", Data: domain.CreateUserMailData{}}
	_, err := buildMail("noreply@example.com", loadTemplates(t), decode(t, m))
	assert.Error(t, err)
}
