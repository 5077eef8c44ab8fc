package i18n

// In preparation for internationalization

// T translates a key to a string. The first parameter identifies a message
// to translate, the second is the default to return while no translation
// catalog is wired up.
func T(_ string, defaultValue string) string {
	return defaultValue
}
