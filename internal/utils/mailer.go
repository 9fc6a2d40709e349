package utils

import (
	"errors"
	"fmt"
	"net/smtp"
)

var ErrMailerNotConfigured = errors.New("smtp not configured")

type SMTPClient struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPClient(host string, port int, user, pass, from string) *SMTPClient {
	if port == 0 {
		port = 587
	}
	if from == "" {
		from = user
	}
	return &SMTPClient{Host: host, Port: port, User: user, Password: pass, From: from, sendMail: smtp.SendMail}
}

func (s *SMTPClient) Send(to, subject, body string) error {
	if s == nil || s.Host == "" || s.User == "" {
		return ErrMailerNotConfigured
	}
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	return s.sendMail(addr, auth, s.From, []string{to}, BuildMessage(s.From, to, subject, body))
}

func BuildMessage(from, to, subject, body string) []byte {
	return []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body + "\r\n")
}
