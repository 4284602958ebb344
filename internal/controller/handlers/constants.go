package handlers

const (
	// Сколько дней вперёд показываем уроки в /lessons и /mylessons
	LessonsHorizonDays = 30

	// Уроки за прошедшие сутки тоже показываем, чтобы их можно было отметить проведёнными
	LessonsLookbackDays = 1

	// Не больше карточек за одну команду
	MaxCards = 20
)
