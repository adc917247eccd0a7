package overpass

import "fmt"

// NetworkError reports a transport failure or a non-2xx response.
// Exactly one of StatusCode and Cause is set.
type NetworkError struct {
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Erro HTTP: %d", e.StatusCode)
	}
	return fmt.Sprintf("falha de conexão: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ParseError reports a response body that is not a valid envelope.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("resposta inválida do servidor: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
