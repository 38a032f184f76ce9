package notifier

import "fmt"

// SendError indica falha do provedor de e-mail
type SendError struct {
	Err      error
	Response string
}

func (e *SendError) Error() string {
	if e.Response != "" {
		return fmt.Sprintf("falha no envio do e-mail: %s. Resposta: %s", e.Err.Error(), e.Response)
	}
	return fmt.Sprintf("falha no envio do e-mail: %s", e.Err.Error())
}

func (e *SendError) Unwrap() error {
	return e.Err
}
