package banks

import (
	"time"

	"uzrates/internal/source"
)

// Xalq Banki hydrates its rate table from an in-page store, so the
// numbers only exist after JavaScript runs.
func NewXB(execPath string, timeout time.Duration) source.Source {
	return source.NewBrowser(source.BrowserConfig{
		BankID:      "xb",
		URL:         "https://xb.uz/en/page/currency-exchange",
		WaitVisible: ".currency-table tbody tr",
		Script: `Array.from(document.querySelectorAll('.currency-table tbody tr')).map(tr => {
			const td = tr.querySelectorAll('td');
			return {
				currency: (td[0] || {}).innerText || '',
				buy: (td[1] || {}).innerText || '',
				sell: (td[2] || {}).innerText || '',
				central: '',
			};
		})`,
		ExecPath: execPath,
		Timeout:  timeout,
	})
}
