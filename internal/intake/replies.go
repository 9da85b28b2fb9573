package intake

import (
	"fmt"
	"strings"
)

// Conversation copy. All outbound replies are Portuguese, matching the
// audience of the barbershop tenants.
const (
	replyAskName    = "Olá! Para agendar seu horário, qual é o seu nome completo?"
	replyAskService = "Qual serviço você deseja agendar? (ex: Corte, Barba, Corte + Barba)"
	replyAskDate    = "Para qual dia você gostaria de agendar? (ex: amanhã, sexta, 2026-09-04)"
	replyAskTime    = "Qual horário você prefere? (ex: 14h, 15:30)"

	replyCancelled       = "Tudo bem, agendamento cancelado. Se quiser marcar outro horário é só chamar!"
	replyNothingToCancel = "Não encontrei nenhum agendamento ativo para cancelar."
	replyReset           = "Sem problemas, cancelei o atendimento. Quando quiser agendar é só mandar uma mensagem!"

	replyReconnect = "Não consegui acessar a agenda no momento: a conexão com o calendário precisa ser refeita pelo estabelecimento. Por favor, tente novamente mais tarde."
	replyUnable    = "Estou com dificuldade para acessar a agenda agora. Pode tentar de novo em alguns minutos?"

	replyNoAvailability = "Infelizmente não encontrei horários disponíveis próximos ao que você pediu. Pode sugerir outro dia ou horário?"

	replyChoiceInvalid = "Por favor, responda apenas com o número da opção desejada (1, 2 ou 3)."
)

func promptForField(field string) string {
	switch field {
	case "name":
		return replyAskName
	case "service":
		return replyAskService
	case "date":
		return replyAskDate
	case "time":
		return replyAskTime
	default:
		return replyAskName
	}
}

func confirmationReply(name, service, startLocal string) string {
	first := firstName(name)
	return fmt.Sprintf("Perfeito, %s! Seu agendamento de %s está confirmado para %s. Até lá!", first, service, startLocal)
}

func suggestionsReply(requestedLocal string, slots []StoredSlot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "O horário %s já está ocupado. Tenho estas opções próximas:\n", requestedLocal)
	for i, s := range slots {
		fmt.Fprintf(&b, "%d) %s\n", i+1, s.StartLocal)
	}
	b.WriteString("Responda com o número da opção desejada.")
	return b.String()
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
