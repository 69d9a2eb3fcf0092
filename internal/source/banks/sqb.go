package banks

import (
	"time"

	"uzrates/internal/source"
)

// SQB renders its exchange widget client-side and rejects plain HTTP
// clients, so it goes through the headless browser.
func NewSQB(execPath string, timeout time.Duration) source.Source {
	return source.NewBrowser(source.BrowserConfig{
		BankID:      "sqb",
		URL:         "https://sqb.uz/en/individuals/exchange-rates/",
		WaitVisible: ".exchange-rates__table tbody tr",
		Script: `Array.from(document.querySelectorAll('.exchange-rates__table tbody tr')).map(tr => {
			const td = tr.querySelectorAll('td');
			return {
				currency: (td[0] || {}).innerText || '',
				buy: (td[1] || {}).innerText || '',
				sell: (td[2] || {}).innerText || '',
				central: (td[3] || {}).innerText || '',
			};
		})`,
		ExecPath: execPath,
		Timeout:  timeout,
	})
}
