package auth

type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseError      Phase = "error"
)

// Form is the state of the sign-in page.
type Form struct {
	Mode    Mode
	Phase   Phase
	Message string
}

func NewForm(mode Mode) Form {
	if mode != ModeRegister {
		mode = ModeLogin
	}
	return Form{Mode: mode, Phase: PhaseIdle}
}

// Toggle switches between login and register and drops any error.
func (f Form) Toggle() Form {
	if f.Mode == ModeLogin {
		return NewForm(ModeRegister)
	}
	return NewForm(ModeLogin)
}

func (f Form) Submit() Form {
	return Form{Mode: f.Mode, Phase: PhaseSubmitting}
}

// Succeed moves a finished registration back to the login form. A finished
// login stays put; the caller navigates away.
func (f Form) Succeed() Form {
	if f.Mode == ModeRegister {
		return NewForm(ModeLogin)
	}
	return Form{Mode: f.Mode, Phase: PhaseIdle}
}

func (f Form) Fail(msg string) Form {
	return Form{Mode: f.Mode, Phase: PhaseError, Message: msg}
}

func (f Form) Busy() bool {
	return f.Phase == PhaseSubmitting
}
