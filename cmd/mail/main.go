package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailKind struct {
	template string
	subject  string
}

// 邮件类型与模板、主题的对应关系
var mailKinds = map[string]mailKind{
	"create_user":    {"./templates/new_account_email.html", "ECNC 赛事管理系统 - 账户信息"},
	"reset_password": {"./templates/reset_password_otp_email.html", "ECNC 赛事管理系统 - 重置密码"},
	"schedule_ready": {"./templates/schedule_ready_email.html", "ECNC 赛事管理系统 - 赛程已生成"},
}

// buildMail 根据队列中的消息构建邮件，返回的错误都是不可重试的
func buildMail(from string, templates map[string]*template.Template, m domain.MailMessage) (*mail.Msg, error) {
	kind, ok := mailKinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", m.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(templates[m.Type], m.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(kind.subject)

	return msg, nil
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 解析邮件模板
	 **********************************************/
	templates := make(map[string]*template.Template, len(mailKinds))
	for typ, kind := range mailKinds {
		tmpl, err := template.ParseFiles(kind.template)
		if err != nil {
			logger.Error("无法解析邮件模板", slog.String("template", kind.template), slog.String("error", err.Error()))
			return
		}
		templates[typ] = tmpl
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // 队列名称
		true,          // 是否持久化
		false,         // 是否自动删除
		false,         // 是否独占
		false,         // 是否不等待
		nil,           // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 排程完成时会一次性给所有组织者发信，限制未确认的消息数量
	if err := ch.Qos(10, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 是否自动确认
		false,  // 是否独占队列
		false,  // no-local，RabbitMQ 不支持
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}

				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				// 消息体中含有初始密码等敏感信息，不能直接打印
				logger.Info("收到消息", slog.String("type", mailMessage.Type), slog.String("to", mailMessage.To))

				m, err := buildMail(cfg.Email.SMTP.Username, templates, mailMessage)
				if err != nil {
					logger.Error("无法构建邮件", slog.String("type", mailMessage.Type), slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	logger.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}
