package memory

import "contas/internal/core"

var demoCategories = []core.Category{
	{ID: "1", Name: "Moradia", Description: "Aluguel, financiamento, condomínio", Color: "#EF4444", Icon: "home", IsActive: true},
	{ID: "2", Name: "Alimentação", Description: "Supermercado, restaurantes, delivery", Color: "#F59E0B", Icon: "utensils", IsActive: true},
	{ID: "3", Name: "Transporte", Description: "Combustível, transporte público, manutenção", Color: "#10B981", Icon: "car", IsActive: true},
	{ID: "4", Name: "Saúde", Description: "Plano de saúde, medicamentos, consultas", Color: "#06B6D4", Icon: "heart", IsActive: true},
	{ID: "5", Name: "Educação", Description: "Cursos, livros, mensalidades", Color: "#8B5CF6", Icon: "book", IsActive: true},
	{ID: "6", Name: "Lazer", Description: "Cinema, viagens, hobbies", Color: "#EC4899", Icon: "gamepad-2", IsActive: true},
	{ID: "7", Name: "Serviços Digitais", Description: "Streaming, software, aplicativos", Color: "#8B5CF6", Icon: "smartphone", IsActive: true},
}

var demoCards = []core.CreditCard{
	{ID: "1", Name: "Cartão Principal", Bank: "Banco do Brasil", LastFourDigits: "1234",
		CreditLimit: core.Money{Cents: 500000}, ClosingDay: 15, DueDay: 10, IsActive: true},
	{ID: "2", Name: "Cartão Secundário", Bank: "Itaú", LastFourDigits: "5678",
		CreditLimit: core.Money{Cents: 300000}, ClosingDay: 20, DueDay: 15, IsActive: true},
}

var demoObligations = []core.RecurringObligation{
	{
		ID: "1", Title: "Netflix", Description: "Assinatura mensal",
		Amount: core.Money{Cents: 4590}, DueDay: 15, Recurrence: core.Monthly,
		StartDate: core.NewDate(2024, 1, 15), IsActive: true,
		CategoryID: "7", CreditCardID: "1", PaymentMethod: core.PaymentCreditCard, ReminderDays: 3,
	},
	{
		ID: "2", Title: "Aluguel", Description: "Aluguel do apartamento",
		Amount: core.Money{Cents: 120000}, DueDay: 10, Recurrence: core.Monthly,
		StartDate: core.NewDate(2024, 1, 10), IsActive: true,
		CategoryID: "1", PaymentMethod: core.PaymentBankSlip, ReminderDays: 5,
	},
	{
		ID: "3", Title: "Spotify", Description: "Assinatura premium",
		Amount: core.Money{Cents: 2190}, DueDay: 5, Recurrence: core.Monthly,
		StartDate: core.NewDate(2024, 1, 5), IsActive: true,
		CategoryID: "7", CreditCardID: "1", PaymentMethod: core.PaymentCreditCard, ReminderDays: 3,
	},
	{
		ID: "4", Title: "Plano de Saúde", Description: "Unimed",
		Amount: core.Money{Cents: 35000}, DueDay: 20, Recurrence: core.Monthly,
		StartDate: core.NewDate(2024, 1, 20), IsActive: true,
		CategoryID: "4", PaymentMethod: core.PaymentAutomaticDebit, ReminderDays: 5,
	},
}
