package browser

// Selector fallbacks, tried in order until one is visible. The portal markup
// is not versioned, so each list mixes text, attribute and class matches.
var (
	usernameInputs = []string{
		`input[name="username"]`,
		`input[type="email"]`,
		`input[placeholder*="email" i]`,
		`input[placeholder*="username" i]`,
	}
	passwordInputs = []string{
		`input[name="password"]`,
		`input[type="password"]`,
	}
	loginButtons = []string{
		`button[type="submit"]`,
		`input[type="submit"]`,
		`button:has-text("Login")`,
		`button:has-text("Sign in")`,
	}
	loggedInIndicators = []string{
		`text=Dashboard`,
		`text=Home`,
		`text=Facilities`,
		`text=Book`,
		`[class*="dashboard"]`,
		`[class*="home"]`,
	}
	loginErrors = []string{
		`[class*="error"]`,
		`[class*="alert"]`,
		`text=Invalid`,
		`text=incorrect`,
	}

	facilitiesMenus = []string{
		`text=Facilities`,
		`text=Booking`,
		`a[href*="facilit"]`,
		`a[href*="book"]`,
		`[class*="facilities"]`,
	}
	tennisOptions = []string{
		`text=Tennis`,
		`text=Tennis Court`,
		`[class*="tennis"]`,
		`img[alt*="tennis" i]`,
	}
	datePickers = []string{
		`input[type="date"]`,
		`[class*="date-picker"]`,
		`[class*="datepicker"]`,
		`[class*="calendar"]`,
	}
	nextDateButtons = []string{
		`button:has-text(">")`,
		`button:has-text("Next")`,
		`[class*="next"]`,
		`[aria-label*="next"]`,
	}
	confirmButtons = []string{
		`button:has-text("Confirm")`,
		`button:has-text("Book")`,
		`button:has-text("Submit")`,
		`button[type="submit"]`,
	}
	successMessages = []string{
		`text=Success`,
		`text=Confirmed`,
		`text=Booked`,
		`[class*="success"]`,
	}
)

// slotCandidates is what the scan tags before handing the DOM to ParseSlots.
const slotCandidates = `[class*="slot"], [class*="time"], td`
