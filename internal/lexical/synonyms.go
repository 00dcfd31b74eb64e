package lexical

// synonyms maps a base grocery term to the abbreviated or variant forms
// Italian supermarket receipts print for it. Expansion is bidirectional:
// seeing the base generates every variant and seeing a variant generates
// the base. Terms are stored normalized (lowercase, no accents).
var synonyms = map[string][]string{
	"latte": {
		"latte ps", "latte uht", "latte intero", "lat ps", "lat ps int", "lat int",
	},
	"mozzarella": {
		"mozz", "mozz buf", "mozzar", "mozzarella bufala",
	},
	"parmigiano": {
		"parm", "parm regg", "parmigiano reggiano", "grana",
	},
	"prosciutto": {
		"prosc", "prosc cotto", "prosc crudo", "pros cotto",
	},
	"pomodoro": {
		"pomod", "pomodori", "pomodorini", "pom ciliegino",
	},
	"zucchine": {
		"zucch", "zucchina",
	},
	"yogurt": {
		"yog", "yogurt greco", "yog bianco",
	},
	"pane": {
		"pane casereccio", "pane integrale", "pane toscano",
	},
	"biscotti": {
		"bisc", "biscotti frollini", "frollini",
	},
	"formaggio": {
		"form", "formag", "formaggio spalm",
	},
	"pollo": {
		"petto pollo", "fesa pollo", "pollo intero",
	},
	"tonno": {
		"tonno olio", "filetti tonno", "tonno nat",
	},
	"acqua": {
		"acqua nat", "acqua frizz", "acqua minerale",
	},
	"uova": {
		"uova fresche", "uova allev terra",
	},
	"burro": {
		"burro trad", "burro chiarif",
	},
	"zucchero": {
		"zucchero semolato", "zucchero canna",
	},
	"pasta": {
		"pasta semola", "pasta integrale",
	},
	"olio": {
		"olio evo", "olio extra vergine", "olio oliva",
	},
	"caffe": {
		"caffe macinato", "caffe grani",
	},
	"detersivo": {
		"deters", "detersivo piatti", "detersivo lavatrice",
	},
	"carta igienica": {
		"carta ig", "carta igien",
	},
}
