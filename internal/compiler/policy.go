package compiler

// PolicyTranslator traduz um blob de política opaco para a forma nativa do
// motor de roteamento. O núcleo nunca interpreta os blobs; o adaptador do
// motor fornece a implementação que entende o formato de cada tipo.
type PolicyTranslator interface {
	// Translate recebe o tipo da política (PolicyLoadBalancer, PolicyRateLimit,
	// etc.) e o blob bruto, e devolve o valor nativo do motor
	Translate(kind string, blob string) (interface{}, error)
}

// NoopPolicyTranslator devolve o blob inalterado. Usado quando o motor aceita
// as políticas em formato bruto ou não as aplica.
type NoopPolicyTranslator struct{}

// Translate devolve o blob sem interpretação
func (NoopPolicyTranslator) Translate(kind string, blob string) (interface{}, error) {
	return blob, nil
}
