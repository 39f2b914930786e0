// Package i18n provides the translation lookup for report text. Hebrew is
// the default language; lookups fall back to English and finally to the raw
// key itself, so a missing key can never produce an empty string.
package i18n

import (
	"fmt"
	"time"
)

// hebrewTexts holds the Hebrew strings keyed by identifier.
var hebrewTexts = map[string]string{
	// Report front matter
	"report_title":    "דוח ניתוח נתונים מקיף",
	"report_subtitle": "ניתוח אוטומטי מלא של מערך הנתונים",
	"report_company":  "מחולל דוחות נתונים",
	"report_date":     "תאריך הדוח",

	// Table of contents and section titles
	"table_of_contents":         "תוכן עניינים",
	"data_preview":              "תצוגה מקדימה של הנתונים",
	"missing_values":            "ניתוח ערכים חסרים",
	"categorical_distributions": "התפלגויות קטגוריות",
	"numeric_distributions":     "התפלגויות מספריות",
	"statistical_summary":       "סיכום סטטיסטי",
	"outliers_analysis":         "ניתוח ערכים חריגים",
	"recommendations":           "המלצות לשיפור",
	"charts_visualizations":     "תרשימים וויזואליזציות",

	// Data preview section
	"data_preview_description": "השורות הראשונות מהנתונים:",
	"data_shape":               "מימדי הנתונים",
	"rows":                     "שורות",
	"columns":                  "עמודות",
	"column_types":             "סוגי העמודות",

	// Missing values section
	"no_missing_values":    "מעולה! אין ערכים חסרים בנתונים",
	"missing_values_found": "נמצאו ערכים חסרים בעמודות הבאות:",
	"missing_count":        "מספר ערכים חסרים",
	"missing_percentage":   "אחוז מהנתונים",
	"total_missing":        "סך הכל ערכים חסרים",

	// Categorical distributions section
	"categorical_description": "ניתוח העמודות הקטגוריאליות:",
	"top_values":              "ערכים נפוצים ביותר",
	"unique_values":           "ערכים ייחודיים",
	"no_categorical_data":     "לא נמצאו עמודות קטגוריות בנתונים",
	"other_values":            "אחר",

	// Numeric distributions section
	"numeric_description": "ניתוח העמודות המספריות:",
	"no_numeric_data":     "לא נמצאו עמודות מספריות בנתונים",
	"mean":                "ממוצע",
	"median":              "חציון",
	"std":                 "סטיית תקן",
	"min":                 "מינימום",
	"max":                 "מקסימום",
	"q25":                 "רבעון ראשון",
	"q75":                 "רבעון שלישי",

	// Statistical summary section
	"stats_summary_description": "תקציר סטטיסטי של כל העמודות המספריות:",
	"data_types_summary":        "סיכום סוגי הנתונים",
	"numeric_columns":           "עמודות מספריות",
	"categorical_columns":       "עמודות קטגוריות",
	"datetime_columns":          "עמודות תאריך",
	"strong_correlations":       "קורלציות חזקות שנמצאו:",
	"no_strong_correlations":    "לא נמצאו קורלציות חזקות בין העמודות",
	"column_trends":             "מגמות לאורך זמן:",
	"trend_rising":              "מגמה עולה",
	"trend_falling":             "מגמה יורדת",
	"trend_stable":              "מגמה יציבה",

	// Outliers section
	"outliers_description": "זיהוי ערכים חריגים לפי שיטת IQR:",
	"no_outliers_found":    "לא זוהו ערכים חריגים באמצעות שיטת IQR",
	"outliers_found":       "זוהו ערכים חריגים בעמודות הבאות:",
	"outliers_count":       "מספר ערכים חריגים",
	"outlier_range":        "טווח תקין",

	// Recommendations section
	"data_quality_recs":   "המלצות לאיכות נתונים:",
	"high_missing_data":   "אחוז גבוה מאוד של ערכים חסרים (%.1f%%) - בדוק את מקור הנתונים",
	"medium_missing_data": "אחוז בינוני של ערכים חסרים (%.1f%%) - שקול השלמת נתונים",
	"low_missing_data":    "אחוז נמוך של ערכים חסרים (%.1f%%) - נתונים באיכות טובה",
	"duplicate_rows_rec":  "נמצאו %d שורות כפולות - מומלץ לנקות לפני הניתוח",
	"high_outliers_rec":   "עמודות עם ערכים חריגים רבים: %s - בדוק אם שגיאות או תופעות אמיתיות",
	"high_correlations":   "נמצאו קורלציות גבוהות מאוד - שקול הסרת עמודות מיותרות",
	"small_dataset":       "מערך נתונים קטן (%d שורות) - תוצאות עלולות להיות לא יציבות",
	"check_data_quality":  "בדוק תמיד את איכות הנתונים לפני ביצוע ניתוח מתקדם",
	"backup_original":     "שמור גרסת גיבוי של הנתונים המקוריים לפני ביצוע שינויים",
	"use_visualizations":  "השתמש בויזואליזציות להבנה טובה יותר של הנתונים",

	// Section fallbacks: "no data" (positive) vs "error" (failure)
	"section_no_data": "לא נמצאו נתונים רלוונטיים לסעיף זה",
	"section_error":   "לא ניתן היה להשלים את הניתוח עבור סעיף זה",

	// Chart captions, matched against chart file names by substring
	"chart_caption":       "תרשים %d",
	"correlation_chart":   "מטריצת קורלציות - מציגה קשרים בין עמודות מספריות",
	"missing_chart":       "ערכים חסרים - כמות הערכים החסרים בכל עמודה",
	"histogram_chart":     "התפלגויות - התפלגות הערכים בעמודות המספריות",
	"bar_chart":           "קטגוריות נפוצות - הערכים השכיחים בעמודות קטגוריות",
	"outliers_chart":      "ערכים חריגים - זיהוי וויזואליזציה של ערכים חריגים",
	"no_charts_available": "לא צורפו תרשימים לדוח זה",

	// Generic terms
	"column":     "עמודה",
	"value":      "ערך",
	"count":      "כמות",
	"percentage": "אחוז",
	"total":      "סך הכל",
}

// englishTexts holds the English fallback strings.
var englishTexts = map[string]string{
	"report_title":    "Comprehensive Data Analysis Report",
	"report_subtitle": "Complete Automated Analysis of the Dataset",
	"report_company":  "Data Report Generator",
	"report_date":     "Report Date",

	"table_of_contents":         "Table of Contents",
	"data_preview":              "Data Preview",
	"missing_values":            "Missing Values Analysis",
	"categorical_distributions": "Categorical Distributions",
	"numeric_distributions":     "Numeric Distributions",
	"statistical_summary":       "Statistical Summary",
	"outliers_analysis":         "Outliers Analysis",
	"recommendations":           "Recommendations",
	"charts_visualizations":     "Charts and Visualizations",

	"data_preview_description": "First rows of the data:",
	"data_shape":               "Data dimensions",
	"rows":                     "rows",
	"columns":                  "columns",
	"column_types":             "Column types",

	"no_missing_values":    "Excellent! No missing values in the data",
	"missing_values_found": "Missing values found in the following columns:",
	"missing_count":        "missing values",
	"missing_percentage":   "of the data",
	"total_missing":        "Total missing values",

	"categorical_description": "Analysis of the categorical columns:",
	"top_values":              "Most common values",
	"unique_values":           "unique values",
	"no_categorical_data":     "No categorical columns found in the data",
	"other_values":            "other",

	"numeric_description": "Analysis of the numeric columns:",
	"no_numeric_data":     "No numeric columns found in the data",
	"mean":                "mean",
	"median":              "median",
	"std":                 "std",
	"min":                 "min",
	"max":                 "max",
	"q25":                 "Q1",
	"q75":                 "Q3",

	"stats_summary_description": "Statistical digest of all numeric columns:",
	"data_types_summary":        "Data type summary",
	"numeric_columns":           "numeric columns",
	"categorical_columns":       "categorical columns",
	"datetime_columns":          "datetime columns",
	"strong_correlations":       "Strong correlations found:",
	"no_strong_correlations":    "No strong correlations found between columns",
	"column_trends":             "Trends over time:",
	"trend_rising":              "rising trend",
	"trend_falling":             "falling trend",
	"trend_stable":              "stable trend",

	"outliers_description": "Outlier detection using the IQR method:",
	"no_outliers_found":    "No outliers detected using the IQR method",
	"outliers_found":       "Outliers detected in the following columns:",
	"outliers_count":       "outliers",
	"outlier_range":        "normal range",

	"data_quality_recs":   "Data quality recommendations:",
	"high_missing_data":   "Very high share of missing values (%.1f%%) - check the data source",
	"medium_missing_data": "Moderate share of missing values (%.1f%%) - consider imputation",
	"low_missing_data":    "Low share of missing values (%.1f%%) - good data quality",
	"duplicate_rows_rec":  "Found %d duplicate rows - clean them before analysis",
	"high_outliers_rec":   "Columns with many outliers: %s - verify errors vs. real phenomena",
	"high_correlations":   "Very high correlations found - consider dropping redundant columns",
	"small_dataset":       "Small dataset (%d rows) - results may be unstable",
	"check_data_quality":  "Always check data quality before advanced analysis",
	"backup_original":     "Keep a backup of the original data before making changes",
	"use_visualizations":  "Use visualizations to better understand the data",

	"section_no_data": "No relevant data was found for this section",
	"section_error":   "The analysis for this section could not be completed",

	"chart_caption":       "Chart %d",
	"correlation_chart":   "Correlation matrix - relationships between numeric columns",
	"missing_chart":       "Missing values - count of missing values per column",
	"histogram_chart":     "Distributions - value distribution of numeric columns",
	"bar_chart":           "Common categories - frequent values in categorical columns",
	"outliers_chart":      "Outliers - detection and visualization of anomalous values",
	"no_charts_available": "No charts were attached to this report",

	"column":     "column",
	"value":      "value",
	"count":      "count",
	"percentage": "percent",
	"total":      "total",
}

// Translator resolves text keys in one active language. It is an explicit
// handle constructed once per process and passed into the report pipeline.
type Translator struct {
	lang string
	loc  *time.Location
}

// New creates a Translator for the given language ("he" or "en") and IANA
// timezone name. An unknown timezone falls back to the local zone.
func New(lang, timezone string) *Translator {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}
	if lang != "he" && lang != "en" {
		lang = "he"
	}
	return &Translator{lang: lang, loc: loc}
}

// Language returns the active language code.
func (tr *Translator) Language() string {
	return tr.lang
}

// T returns the text for key in the active language, falling back to the
// other language and finally to the key itself.
func (tr *Translator) T(key string) string {
	primary, fallback := hebrewTexts, englishTexts
	if tr.lang == "en" {
		primary, fallback = englishTexts, hebrewTexts
	}
	if s, ok := primary[key]; ok {
		return s
	}
	if s, ok := fallback[key]; ok {
		return s
	}
	return key
}

// Tf returns the text for key formatted with args.
func (tr *Translator) Tf(key string, args ...interface{}) string {
	return fmt.Sprintf(tr.T(key), args...)
}

// Has reports whether key exists in either language table.
func (tr *Translator) Has(key string) bool {
	if _, ok := hebrewTexts[key]; ok {
		return true
	}
	_, ok := englishTexts[key]
	return ok
}

// FormatDateTime formats a timestamp using the DD/MM/YYYY HH:MM convention
// in the configured timezone.
func (tr *Translator) FormatDateTime(t time.Time) string {
	return t.In(tr.loc).Format("02/01/2006 15:04")
}

// Now returns the current time in the configured timezone.
func (tr *Translator) Now() time.Time {
	return time.Now().In(tr.loc)
}
