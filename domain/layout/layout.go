// Package layout holds the reference-space geometry of the launcher's login
// flow. Every coordinate is authored against a 3840x2160 client area.
package layout

import (
	"image/color"

	"github.com/soocke/login-bot-go/domain/coords"
)

// CheckID names a colour check.
type CheckID int

const (
	// CheckAccountMenu is the top-left account badge shown on the start screen.
	CheckAccountMenu CheckID = iota
	// CheckLogoutDialog is the dark corner of the logout confirmation panel.
	CheckLogoutDialog
	numChecks
)

// TargetID names a click target.
type TargetID int

const (
	TargetAccountMenu TargetID = iota // bottom-left account switch
	TargetLogout                      // logout entry in the account menu
	TargetConfirmLogout               // confirm button of the logout dialog
	TargetOtherAccount                // "login with other account" button
	TargetAccountField                // username input field
	TargetSubmit                      // login/submit button
	TargetLogoutDialog                // same spot as CheckLogoutDialog
	numTargets
)

// RegionID names an OCR region.
type RegionID int

const (
	RegionOtherAccount RegionID = iota
	RegionSMS
	RegionClickEnter
	numRegions
)

var checks = [numChecks]coords.CheckPoint{
	CheckAccountMenu:  {Point: coords.Point{X: 86, Y: 88}, Color: color.RGBA{R: 59, G: 66, B: 85, A: 255}},
	CheckLogoutDialog: {Point: coords.Point{X: 3676, Y: 1967}, Color: color.RGBA{R: 34, G: 34, B: 34, A: 255}},
}

var targets = [numTargets]coords.Point{
	TargetAccountMenu:   {X: 82, Y: 2052},
	TargetLogout:        {X: 1388, Y: 1079},
	TargetConfirmLogout: {X: 2145, Y: 1350},
	TargetOtherAccount:  {X: 1920, Y: 1400},
	TargetAccountField:  {X: 2100, Y: 796},
	TargetSubmit:        {X: 2010, Y: 1190},
	TargetLogoutDialog:  {X: 3676, Y: 1967},
}

var regions = [numRegions]coords.Region{
	RegionOtherAccount: {Name: "登录其他账号", Left: 1772, Top: 1378, Right: 2069, Bottom: 1433},
	RegionSMS:          {Name: "手机短信", Left: 1873, Top: 1564, Right: 2050, Bottom: 1614},
	RegionClickEnter:   {Name: "点击进入", Left: 1820, Top: 2012, Right: 2020, Bottom: 2066},
}

// Check returns the colour check for id.
func Check(id CheckID) coords.CheckPoint { return checks[id] }

// Target returns the click target for id.
func Target(id TargetID) coords.Point { return targets[id] }

// Region returns the OCR region for id.
func Region(id RegionID) coords.Region { return regions[id] }

func (id CheckID) String() string {
	switch id {
	case CheckAccountMenu:
		return "account-menu"
	case CheckLogoutDialog:
		return "logout-dialog"
	default:
		return "unknown"
	}
}

func (id TargetID) String() string {
	switch id {
	case TargetAccountMenu:
		return "account-menu"
	case TargetLogout:
		return "logout"
	case TargetConfirmLogout:
		return "confirm-logout"
	case TargetOtherAccount:
		return "other-account"
	case TargetAccountField:
		return "account-field"
	case TargetSubmit:
		return "submit"
	case TargetLogoutDialog:
		return "logout-dialog"
	default:
		return "unknown"
	}
}

// String returns a stable ASCII label, used for metrics and logs.
func (id RegionID) String() string {
	switch id {
	case RegionOtherAccount:
		return "other-account"
	case RegionSMS:
		return "sms"
	case RegionClickEnter:
		return "click-enter"
	default:
		return "unknown"
	}
}

// Checks lists every check id, in detection order.
func Checks() []CheckID { return []CheckID{CheckAccountMenu, CheckLogoutDialog} }

// Regions lists every region id.
func Regions() []RegionID { return []RegionID{RegionOtherAccount, RegionSMS, RegionClickEnter} }
