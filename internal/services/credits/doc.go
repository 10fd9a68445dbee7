// Package credits scrapes writer and publisher text from track credits pages
// with a cookie-authenticated browser session. Structural selectors are tried
// first with text-pattern fallbacks; every session-bound navigation records
// its auth outcome on the health monitor.
package credits
