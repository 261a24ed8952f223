package qrcode

type Generator interface {
	Generate(content string) ([]byte, error)
}
