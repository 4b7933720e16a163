package flow

// User-facing texts. The bot speaks Uzbek only.
const (
	MsgWelcome    = "Assalomu alaykum!\n\nBuyurtma berish uchun yo'nalishni tanlang"
	MsgHelp       = "Bot yordamchisi:\n\n/start — Buyurtma berishni boshlash\n/cancel — Jarayonni bekor qilish\n/help — Yordam\n\nBuyurtma bosqichlarida tugmalardan foydalaning va ma'lumotlarni to'g'ri kiriting."
	MsgCancelled  = "Buyurtma bekor qilindi. /start orqali yangidan boshlang."
	MsgStartHint  = "Buyurtma berish uchun /start buyrug‘ini yuboring."
	MsgUseButtons = "Iltimos, tugmalardan foydalaning."
	MsgTypeText   = "Iltimos, javobni matn ko‘rinishida yozing."
	MsgStale      = "Bu variant endi mavjud emas. Quyidagilardan birini tanlang:"
	MsgTryAgain   = "Xatolik yuz berdi. Iltimos, birozdan so‘ng qayta urinib ko‘ring."
	MsgTooFast    = "Juda tez yuboryapsiz. Iltimos, xabarni qayta yuboring."

	MsgChosenDirection = "Tanlangan yo‘nalish: %s"
	MsgAskDate         = "Ketish sanasini yozing (masalan: 2025-06-15):"
	MsgBadDate         = "Sana noto‘g‘ri formatda. To‘g‘ri format: YYYY-MM-DD (masalan: 2025-06-15)"
	MsgAskPhone        = "Telefon raqamingizni yozing (masalan: +998901234567 yoki 998901234567):"
	MsgBadPhone        = "Telefon raqami noto‘g‘ri formatda. To‘g‘ri format: +998901234567 yoki 998901234567"
	MsgAskTripType     = "Odam yuborayapsizmi yoki pochta?"
	MsgChosenTripType  = "Tanlangan: %s"
	MsgAskCar          = "Mashina turini tanlang:"
	MsgChosenCar       = "Tanlangan mashina: %s"
	MsgAskAddress      = "Qayerdan olib ketish kerak? Manzilni yozing:"
	MsgEmptyAddress    = "Manzil bo‘sh bo‘lishi mumkin emas. Manzilni yozing:"
	MsgAskComment      = "Izoh qoldirmoqchimisiz? (ixtiyoriy, yoki '-' deb yozing):"
	MsgAskConfirm      = "Tasdiqlaysizmi?"
	MsgThanks          = "Rahmat! Buyurtmangiz yuborildi ✅"
	MsgOrderCancelled  = "Buyurtma bekor qilindi."

	LabelPerson  = "Odam"
	LabelCargo   = "Pochta"
	LabelConfirm = "✅ Tasdiqlash"
	LabelCancel  = "❌ Bekor qilish"
)

// Operator texts.
const (
	MsgAdminOnlyCommand = "Bu buyruq faqat admin uchun."
	MsgAdminOnlySection = "Bu bo'lim faqat admin uchun."
	MsgAdminWelcome     = "Admin paneliga xush kelibsiz!"
	MsgAdminHelp        = "Admin uchun buyruqlar:\n/admin — Admin panel\n/adminhelp — Admin uchun yordam\n/stats — Buyurtmalar statistikasi\n/users — Foydalanuvchilar soni\n\nPanelda: Mashina va marshrutlarni qo'shish/o'chirish/ko'rish."
	MsgStats            = "Jami buyurtmalar: %d"
	MsgUsers            = "Jami foydalanuvchilar: %d"

	MsgAskNewVehicle     = "Yangi mashina nomini kiriting:"
	MsgAskVehicleRemoval = "O'chirmoqchi bo'lgan mashina nomini kiriting (aniq nom):\n%s"
	MsgVehiclesEmpty     = "Mashinalar ro'yxati bo'sh."
	MsgVehicleList       = "Mashinalar ro'yxati:\n%s"
	MsgVehicleNameEmpty  = "Mashina nomi bo'sh bo'lishi mumkin emas."
	MsgVehicleAdded      = "%s mashinasi muvaffaqiyatli qo'shildi!"
	MsgVehicleExists     = "Bu mashina allaqachon ro'yxatda mavjud."
	MsgVehicleRemoved    = "%s mashinasi o'chirildi!"
	MsgVehicleNotFound   = "%s nomli mashina topilmadi."

	MsgAskNewRoute     = "Yangi marshrut nomini kiriting:"
	MsgAskRouteRemoval = "O'chirmoqchi bo'lgan marshrut nomini kiriting (aniq nom):\n%s"
	MsgRoutesEmpty     = "Marshrutlar ro'yxati bo'sh."
	MsgRouteList       = "Marshrutlar ro'yxati:\n%s"
	MsgRouteNameEmpty  = "Marshrut nomi bo'sh bo'lishi mumkin emas."
	MsgRouteAdded      = "%s marshruti muvaffaqiyatli qo'shildi!"
	MsgRouteExists     = "Bu marshrut allaqachon ro'yxatda mavjud."
	MsgRouteRemoved    = "%s marshruti o'chirildi!"
	MsgRouteNotFound   = "%s nomli marshrut topilmadi."

	MsgNameTooLong = "Nom juda uzun (ko‘pi bilan %d bayt)."

	LabelAddVehicle    = "➕ Mashina qo'shish"
	LabelRemoveVehicle = "➖ Mashina o'chirish"
	LabelListVehicles  = "🚗 Mashinalar ro'yxati"
	LabelAddRoute      = "➕ Marshrut qo'shish"
	LabelRemoveRoute   = "➖ Marshrut o'chirish"
	LabelListRoutes    = "🛣 Marshrutlar ro'yxati"
)
