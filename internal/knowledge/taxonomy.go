package knowledge

import "strings"

const (
	// DefaultDepartment is used when a symptom has no mapping.
	DefaultDepartment = "General Medicine"
	// DefaultDoctor is the practitioner for DefaultDepartment and for unknown departments.
	DefaultDoctor = "Dr. Arjun Reddy"
)

var doctorRoster = map[string]string{
	"Neurology":        "Dr. Nikhil Rao",
	"Ophthalmology":    "Dr. Anjali Mehta",
	"ENT":              "Dr. Rajesh Kumar",
	"Dentistry":        "Dr. Priya Sharma",
	"Pulmonology":      "Dr. Sameer Khan",
	"Cardiology":       "Dr. Meera Sharma",
	"Gastroenterology": "Dr. Kavya Nair",
	"Urology":          "Dr. Arvind Patel",
	"Orthopedics":      "Dr. Rohit Verma",
	"Dermatology":      "Dr. Shruti Jain",
	"Endocrinology":    "Dr. Vikram Singh",
	"Psychiatry":       "Dr. Riya Desai",
	"Gynecology":       "Dr. Priya Patel",
	"Pediatrics":       "Dr. Anil Kumar",
	"Geriatrics":       "Dr. Suresh Menon",
	"General Medicine": DefaultDoctor,
	"General Surgery":  "Dr. Sanjay Gupta",
	"Vascular Surgery": "Dr. Anil Joshi",
}

// DoctorFor returns the practitioner assigned to a department.
func DoctorFor(department string) string {
	if doctor, ok := doctorRoster[department]; ok {
		return doctor
	}
	return DefaultDoctor
}

// Departments lists every department with an assigned practitioner.
func Departments() []string {
	out := make([]string, 0, len(doctorRoster))
	for dept := range doctorRoster {
		out = append(out, dept)
	}
	return out
}

// seedSymptoms is the curated phrase -> department taxonomy loaded at startup.
var seedSymptoms = map[string]string{
	// Cardiology
	"chest pain":          "Cardiology",
	"heart pain":          "Cardiology",
	"palpitations":        "Cardiology",
	"high blood pressure": "Cardiology",
	"low blood pressure":  "Cardiology",
	"shortness of breath": "Cardiology",
	"heart attack":        "Cardiology",
	"irregular heartbeat": "Cardiology",
	"fainting":            "Cardiology",
	"swelling legs":       "Cardiology",
	"heart murmur":        "Cardiology",
	"arrhythmia":          "Cardiology",

	// Gastroenterology
	"stomach pain":          "Gastroenterology",
	"abdominal pain":        "Gastroenterology",
	"vomiting":              "Gastroenterology",
	"diarrhea":              "Gastroenterology",
	"constipation":          "Gastroenterology",
	"acid reflux":           "Gastroenterology",
	"acidity":               "Gastroenterology",
	"heartburn":             "Gastroenterology",
	"bloating":              "Gastroenterology",
	"indigestion":           "Gastroenterology",
	"food poisoning":        "Gastroenterology",
	"liver problem":         "Gastroenterology",
	"jaundice":              "Gastroenterology",
	"gallstones":            "Gastroenterology",
	"gerd":                  "Gastroenterology",
	"stomach ulcer":         "Gastroenterology",
	"nausea":                "Gastroenterology",
	"ibs":                   "Gastroenterology",
	"difficulty swallowing": "Gastroenterology",

	// General Surgery / Vascular
	"appendicitis":   "General Surgery",
	"hemorrhoids":    "General Surgery",
	"hernia":         "General Surgery",
	"varicose veins": "Vascular Surgery",

	// Orthopedics
	"back pain":       "Orthopedics",
	"joint pain":      "Orthopedics",
	"knee pain":       "Orthopedics",
	"shoulder pain":   "Orthopedics",
	"neck pain":       "Orthopedics",
	"stiff neck":      "Orthopedics",
	"frozen shoulder": "Orthopedics",
	"whiplash":        "Orthopedics",
	"fracture":        "Orthopedics",
	"arthritis":       "Orthopedics",
	"bone pain":       "Orthopedics",
	"muscle pain":     "Orthopedics",
	"muscle strain":   "Orthopedics",
	"sciatica":        "Orthopedics",
	"sports injury":   "Orthopedics",
	"sprain":          "Orthopedics",
	"osteoporosis":    "Orthopedics",
	"leg pain":        "Orthopedics",
	"hip pain":        "Orthopedics",
	"ankle pain":      "Orthopedics",
	"foot pain":       "Orthopedics",
	"heel pain":       "Orthopedics",
	"wrist pain":      "Orthopedics",
	"elbow pain":      "Orthopedics",

	// General Medicine
	"fever":     "General Medicine",
	"cough":     "General Medicine",
	"cold":      "General Medicine",
	"headache":  "General Medicine",
	"body pain": "General Medicine",
	"weakness":  "General Medicine",
	"fatigue":   "General Medicine",
	"infection": "General Medicine",

	// Pulmonology
	"wheezing":         "Pulmonology",
	"chest congestion": "Pulmonology",
	"asthma":           "Pulmonology",
	"pneumonia":        "Pulmonology",
	"bronchitis":       "Pulmonology",
	"copd":             "Pulmonology",
	"lung pain":        "Pulmonology",

	// ENT
	"ear pain":          "ENT",
	"sore throat":       "ENT",
	"sinus":             "ENT",
	"hearing loss":      "ENT",
	"nose bleed":        "ENT",
	"tonsils":           "ENT",
	"vertigo":           "ENT",
	"ear infection":     "ENT",
	"tinnitus":          "ENT",
	"ear discharge":     "ENT",
	"balance problems":  "ENT",
	"nasal congestion":  "ENT",
	"loss of smell":     "ENT",
	"runny nose":        "ENT",
	"sneezing":          "ENT",
	"allergic rhinitis": "ENT",
	"hoarse voice":      "ENT",

	// Dentistry
	"toothache":    "Dentistry",
	"gum bleeding": "Dentistry",
	"mouth ulcers": "Dentistry",
	"jaw pain":     "Dentistry",
	"bad breath":   "Dentistry",
	"oral thrush":  "Dentistry",

	// Ophthalmology
	"eye pain":        "Ophthalmology",
	"vision problems": "Ophthalmology",
	"blurred vision":  "Ophthalmology",
	"red eyes":        "Ophthalmology",
	"dry eyes":        "Ophthalmology",
	"cataract":        "Ophthalmology",
	"glaucoma":        "Ophthalmology",
	"eye infection":   "Ophthalmology",
	"vision loss":     "Ophthalmology",
	"eye floaters":    "Ophthalmology",

	// Dermatology
	"skin rash":        "Dermatology",
	"acne":             "Dermatology",
	"itching":          "Dermatology",
	"hair loss":        "Dermatology",
	"psoriasis":        "Dermatology",
	"eczema":           "Dermatology",
	"allergy":          "Dermatology",
	"skin infection":   "Dermatology",
	"dandruff":         "Dermatology",
	"fungal infection": "Dermatology",
	"warts":            "Dermatology",
	"hives":            "Dermatology",
	"shingles":         "Dermatology",

	// Endocrinology
	"diabetes":       "Endocrinology",
	"thyroid issues": "Endocrinology",
	"weight gain":    "Endocrinology",
	"weight loss":    "Endocrinology",
	"infertility":    "Endocrinology",

	// Gynecology
	"pregnancy":         "Gynecology",
	"period pain":       "Gynecology",
	"menstrual pain":    "Gynecology",
	"menstrual issues":  "Gynecology",
	"pcos":              "Gynecology",
	"menopause":         "Gynecology",
	"breast pain":       "Gynecology",
	"vaginal infection": "Gynecology",
	"endometriosis":     "Gynecology",
	"uterine fibroids":  "Gynecology",

	// Pediatrics
	"child fever":          "Pediatrics",
	"child cough":          "Pediatrics",
	"vaccination":          "Pediatrics",
	"teething":             "Pediatrics",
	"growth issues":        "Pediatrics",
	"bedwetting":           "Pediatrics",
	"developmental issues": "Pediatrics",

	// Neurology
	"migraine":      "Neurology",
	"dizziness":     "Neurology",
	"seizure":       "Neurology",
	"parkinson":     "Neurology",
	"alzheimer":     "Neurology",
	"memory loss":   "Neurology",
	"double vision": "Neurology",
	"numbness":      "Neurology",

	// Geriatrics
	"dementia":        "Geriatrics",
	"mobility issues": "Geriatrics",

	// Urology
	"uti":                     "Urology",
	"urinary tract infection": "Urology",
	"kidney stone":            "Urology",
	"prostate":                "Urology",
	"urinary infection":       "Urology",
	"frequent urination":      "Urology",
	"burning urination":       "Urology",
	"blood in urine":          "Urology",
	"incontinence":            "Urology",

	// Psychiatry
	"depression":    "Psychiatry",
	"anxiety":       "Psychiatry",
	"stress":        "Psychiatry",
	"insomnia":      "Psychiatry",
	"panic attacks": "Psychiatry",
}

// Intent is an administrative request distinct from a medical complaint.
type Intent string

const (
	IntentBooking      Intent = "booking_request"
	IntentCancellation Intent = "cancellation_request"
	IntentReschedule   Intent = "reschedule_request"
	IntentAvailability Intent = "availability_check"
	IntentEmergency    Intent = "emergency_situation"
)

var seedIntents = map[string]Intent{
	"book appointment":       IntentBooking,
	"make appointment":       IntentBooking,
	"schedule appointment":   IntentBooking,
	"i want to book":         IntentBooking,
	"i'd like to book":       IntentBooking,
	"can i book":             IntentBooking,
	"need appointment":       IntentBooking,
	"want appointment":       IntentBooking,
	"cancel appointment":     IntentCancellation,
	"cancel my appointment":  IntentCancellation,
	"reschedule appointment": IntentReschedule,
	"change appointment":     IntentReschedule,
	"available slots":        IntentAvailability,
	"doctor availability":    IntentAvailability,
	"emergency":              IntentEmergency,
}

// SeedSymptoms returns a copy of the curated taxonomy.
func SeedSymptoms() map[string]string {
	out := make(map[string]string, len(seedSymptoms))
	for k, v := range seedSymptoms {
		out[k] = v
	}
	return out
}

// SeedIntents returns a copy of the curated intent phrases.
func SeedIntents() map[string]Intent {
	out := make(map[string]Intent, len(seedIntents))
	for k, v := range seedIntents {
		out[k] = v
	}
	return out
}

// BodyParts is the anatomical vocabulary used for "<part> pain" detection.
var BodyParts = []string{
	"head", "eye", "ear", "nose", "throat", "mouth", "tooth", "gum", "jaw", "neck",
	"shoulder", "chest", "heart", "lung", "stomach", "abdomen", "back", "spine",
	"arm", "elbow", "wrist", "hand", "finger", "leg", "thigh", "knee", "ankle",
	"foot", "heel", "hip", "pelvis", "kidney", "liver", "bladder", "prostate",
	"skin", "hair", "nail", "bone", "joint", "muscle", "tongue", "lip", "face",
	"forehead", "temple", "scalp", "eyebrow", "eyelid", "nostril", "chin",
	"cheek", "windpipe", "rib", "breast", "nipple", "belly", "navel",
	"groin", "buttock", "calf", "shin", "sole", "toe",
}

var bodyPartDepartments = map[string]string{
	"head": "General Medicine", "eye": "Ophthalmology", "eyelid": "Ophthalmology", "eyebrow": "Ophthalmology",
	"ear": "ENT", "nose": "ENT", "nostril": "ENT", "throat": "ENT", "windpipe": "ENT",
	"mouth": "Dentistry", "tooth": "Dentistry", "gum": "Dentistry", "jaw": "Dentistry", "tongue": "Dentistry", "lip": "Dentistry",
	"neck": "Orthopedics", "shoulder": "Orthopedics", "back": "Orthopedics", "spine": "Orthopedics",
	"arm": "Orthopedics", "elbow": "Orthopedics", "wrist": "Orthopedics", "hand": "Orthopedics", "finger": "Orthopedics",
	"leg": "Orthopedics", "thigh": "Orthopedics", "knee": "Orthopedics", "ankle": "Orthopedics", "foot": "Orthopedics",
	"heel": "Orthopedics", "hip": "Orthopedics", "pelvis": "Orthopedics", "bone": "Orthopedics", "joint": "Orthopedics",
	"muscle": "Orthopedics", "rib": "Orthopedics", "calf": "Orthopedics", "shin": "Orthopedics", "sole": "Orthopedics",
	"toe": "Orthopedics", "buttock": "Orthopedics",
	"chest": "Cardiology", "heart": "Cardiology",
	"lung": "Pulmonology",
	"stomach": "Gastroenterology", "abdomen": "Gastroenterology", "liver": "Gastroenterology", "belly": "Gastroenterology", "navel": "Gastroenterology",
	"kidney": "Urology", "bladder": "Urology", "prostate": "Urology", "groin": "Urology",
	"skin": "Dermatology", "hair": "Dermatology", "nail": "Dermatology", "face": "Dermatology", "scalp": "Dermatology",
	"breast": "Gynecology", "nipple": "Gynecology",
	"forehead": "General Medicine", "temple": "General Medicine", "chin": "Dentistry", "cheek": "Dentistry",
}

// DepartmentForBodyPart maps an anatomical term to the specialty that treats it.
func DepartmentForBodyPart(part string) string {
	if dept, ok := bodyPartDepartments[strings.ToLower(strings.TrimSpace(part))]; ok {
		return dept
	}
	return DefaultDepartment
}

var conditionKeywords = []struct {
	keywords   []string
	department string
}{
	{[]string{"chest", "heart"}, "Cardiology"},
	{[]string{"stomach", "abdomen", "vomit", "digest"}, "Gastroenterology"},
	{[]string{"back", "joint", "bone", "muscle"}, "Orthopedics"},
	{[]string{"eye", "vision"}, "Ophthalmology"},
	{[]string{"ear", "nose", "throat", "hearing"}, "ENT"},
	{[]string{"tooth", "teeth", "gum", "mouth"}, "Dentistry"},
	{[]string{"skin", "rash", "hair"}, "Dermatology"},
	{[]string{"pregnancy", "pregnant", "period", "breast"}, "Gynecology"},
	{[]string{"child", "baby", "pediatric"}, "Pediatrics"},
	{[]string{"mental", "depression", "anxiety"}, "Psychiatry"},
	{[]string{"breath", "lung", "wheez"}, "Pulmonology"},
	{[]string{"kidney", "urine", "urinat", "bladder"}, "Urology"},
}

// GuessDepartment derives a best-effort specialty for an unseen complaint.
// Keywords are matched at word starts so "ear" does not fire on "heart".
func GuessDepartment(phrase string) string {
	padded := " " + strings.ToLower(phrase)
	for _, rule := range conditionKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(padded, " "+kw) {
				return rule.department
			}
		}
	}
	return DefaultDepartment
}
