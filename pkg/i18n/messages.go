package i18n

var messages = map[string]map[string]string{
	"ar": {
		"app.title":  "لوحة التحكم",
		"app.footer": "إدارة محتوى الموقع",

		"nav.overview":     "نظرة عامة",
		"nav.files":        "ملفات البيانات",
		"nav.media":        "الوسائط",
		"nav.images":       "مكتبة الصور",
		"nav.logout":       "تسجيل الخروج",
		"section.pages":    "الصفحات",
		"section.settings": "إعدادات عامة",
		"section.":         "مستندات أخرى",

		"overview.welcome": "مرحباً بك في لوحة التحكم",
		"overview.intro":   "عدّل محتوى الموقع والصور من هنا. تُحفظ كل التغييرات في المستودع مباشرة.",
		"overview.content": "إدارة المحتوى",
		"overview.media":   "مكتبة الوسائط",

		"data.title": "ملفات البيانات",
		"data.empty": "لا توجد ملفات JSON",

		"editor.back":       "العودة للرئيسية",
		"editor.save":       "حفظ التغييرات",
		"editor.saving":     "جاري الحفظ...",
		"editor.saved":      "تم حفظ التغييرات بنجاح!",
		"editor.raw":        "تحرير JSON",
		"editor.form":       "النموذج",
		"editor.list":       "قائمة {0}",
		"editor.add":        "إضافة عنصر",
		"editor.remove":     "حذف",
		"editor.item":       "عنصر {0}",
		"editor.pick":       "اختر صورة",
		"editor.empty_list": "لا توجد عناصر",
		"editor.not_object": "هذا المستند ليس كائن JSON ولا يمكن عرضه كنموذج",

		"raw.title":   "محرر JSON",
		"raw.hint":    "يجب أن يكون النص JSON صالحاً قبل الحفظ",
		"raw.invalid": "JSON غير صالح",

		"gallery.title":           "مكتبة الصور",
		"gallery.up":              "للأعلى",
		"gallery.upload":          "رفع صورة",
		"gallery.uploaded":        "تم رفع الصورة بنجاح",
		"gallery.deleted":         "تم حذف الصورة",
		"gallery.delete":          "حذف",
		"gallery.confirm_delete":  "هل أنت متأكد من حذف {0}؟",
		"gallery.confirm_replace": "الملف {0} موجود بالفعل. هل تريد استبداله؟",
		"gallery.replace":         "استبدال",
		"gallery.cancel":          "إلغاء",
		"gallery.empty":           "لا توجد صور في هذا المجلد",
		"gallery.page":            "صفحة {0} من {1}",
		"gallery.prev":            "السابق",
		"gallery.next":            "التالي",
		"gallery.copy":            "نسخ المسار",

		"login.title":  "تسجيل الدخول",
		"login.github": "تسجيل الدخول عبر GitHub",
		"login.denied": "لا تملك صلاحية تعديل هذا المستودع",
		"login.failed": "فشل تسجيل الدخول",

		"error.title":        "حدث خطأ",
		"error.not_found":    "الملف أو المجلد غير موجود",
		"error.conflict":     "تم تعديل الملف من مكان آخر. أعد تحميل الصفحة ثم حاول مجدداً",
		"error.auth":         "فشل التحقق من الهوية مع المستودع",
		"error.transient":    "الخدمة غير متاحة مؤقتاً، حاول لاحقاً",
		"error.validation":   "مدخلات غير صالحة",
		"error.confirmation": "يلزم التأكيد قبل المتابعة",
		"error.unknown":      "حدث خطأ غير متوقع",
	},
	"en": {
		"app.title":  "Dashboard",
		"app.footer": "Site content management",

		"nav.overview":     "Overview",
		"nav.files":        "Data files",
		"nav.media":        "Media",
		"nav.images":       "Image library",
		"nav.logout":       "Log out",
		"section.pages":    "Pages",
		"section.settings": "General settings",
		"section.":         "Other documents",

		"overview.welcome": "Welcome to the Dashboard",
		"overview.intro":   "Manage your website content and media files directly from here. Changes are committed to the repository automatically.",
		"overview.content": "Content Management",
		"overview.media":   "Media Library",

		"data.title": "Data files",
		"data.empty": "No JSON files found",

		"editor.back":       "Back to overview",
		"editor.save":       "Save changes",
		"editor.saving":     "Saving...",
		"editor.saved":      "Changes saved successfully!",
		"editor.raw":        "Edit raw JSON",
		"editor.form":       "Form",
		"editor.list":       "{0} list",
		"editor.add":        "Add item",
		"editor.remove":     "Remove",
		"editor.item":       "Item {0}",
		"editor.pick":       "Choose image",
		"editor.empty_list": "No items",
		"editor.not_object": "This document is not a JSON object and cannot be shown as a form",

		"raw.title":   "JSON editor",
		"raw.hint":    "The text must be valid JSON before it can be saved",
		"raw.invalid": "Invalid JSON",

		"gallery.title":           "Image library",
		"gallery.up":              "Up one level",
		"gallery.upload":          "Upload image",
		"gallery.uploaded":        "Image uploaded",
		"gallery.deleted":         "Image deleted",
		"gallery.delete":          "Delete",
		"gallery.confirm_delete":  "Are you sure you want to delete {0}?",
		"gallery.confirm_replace": "{0} already exists. Replace it?",
		"gallery.replace":         "Replace",
		"gallery.cancel":          "Cancel",
		"gallery.empty":           "No images in this folder",
		"gallery.page":            "Page {0} of {1}",
		"gallery.prev":            "Previous",
		"gallery.next":            "Next",
		"gallery.copy":            "Copy path",

		"login.title":  "Sign in",
		"login.github": "Sign in with GitHub",
		"login.denied": "You are not allowed to edit this repository",
		"login.failed": "Sign in failed",

		"error.title":        "Something went wrong",
		"error.not_found":    "The file or folder does not exist",
		"error.conflict":     "The file was changed elsewhere. Reload the page and try again",
		"error.auth":         "Authentication with the repository failed",
		"error.transient":    "The service is temporarily unavailable, try again later",
		"error.validation":   "Invalid input",
		"error.confirmation": "Confirmation is required to continue",
		"error.unknown":      "An unexpected error occurred",
	},
}
