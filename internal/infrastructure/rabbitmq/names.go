package rabbitmq

// Имена топологии - контракт между сервисами, менять нельзя.
const (
	// Прямая сага: регистрация пользователя.
	UserRegExchange   = "nexus.user.reg.exchange"
	UserRegQueue      = "nexus.user.reg.queue"
	UserRegRoutingKey = "nexus.user.reg.key"

	UserRegDLX          = "nexus.user.reg.dlx"
	UserRegDLQ          = "nexus.user.reg.dlq"
	UserRegDLRoutingKey = "nexus.user.reg.dl.key"

	// Компенсирующая сага: откат регистрации после провала проекции.
	ProfileFailExchange   = "nexus.profile.fail.exchange"
	ProfileFailQueue      = "nexus.profile.fail.queue"
	ProfileFailRoutingKey = "nexus.profile.fail.key"

	ProfileFailDLX          = "nexus.profile.fail.dlx"
	ProfileFailDLQ          = "nexus.profile.fail.dlq"
	ProfileFailDLRoutingKey = "nexus.profile.fail.dl.key"
)
