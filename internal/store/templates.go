package store

import (
	"maps"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/value"
)

// Templates are the compiled-in defaults. Persisted files only carry the
// difference from these values.
type Templates struct {
	Global      value.Map
	Profile     value.Map
	Keybindings map[string]string
	Layout      layout.Flat
}

// Clone deep-copies the templates.
func (t Templates) Clone() Templates {
	return Templates{
		Global:      t.Global.Clone(),
		Profile:     t.Profile.Clone(),
		Keybindings: maps.Clone(t.Keybindings),
		Layout:      t.Layout.Clone(),
	}
}

// Global keys read by the session coordinator and the CLI.
const (
	KeyAlwaysSplitWithProfile = "always_split_with_profile"
	KeyEnabledPlugins         = "enabled_plugins"
)

// DefaultTemplates returns the built-in defaults.
func DefaultTemplates() Templates {
	return Templates{
		Global: value.Map{
			"always_split_with_profile":     value.Bool(false),
			"ask_before_closing":            value.String("multiple_terminals"),
			"borderless":                    value.Bool(false),
			"broadcast_default":             value.String("group"),
			"case_sensitive":                value.Bool(true),
			"cell_height":                   value.Float(1.0),
			"cell_width":                    value.Float(1.0),
			"clear_select_on_copy":          value.Bool(false),
			"close_button_on_tab":           value.Bool(true),
			"dbus":                          value.Bool(true),
			"enabled_plugins":               value.List("LaunchpadBugURLHandler", "LaunchpadCodeURLHandler", "APTURLHandler"),
			"extra_styling":                 value.Bool(true),
			"focus":                         value.String("click"),
			"handle_size":                   value.Int(-1),
			"hide_tabbar":                   value.Bool(false),
			"homogeneous_tabbar":            value.Bool(true),
			"inactive_color_offset":         value.Float(0.8),
			"invert_search":                 value.Bool(false),
			"link_single_click":             value.Bool(false),
			"new_tab_after_current_tab":     value.Bool(false),
			"putty_paste_style":             value.Bool(false),
			"scroll_tabbar":                 value.Bool(false),
			"smart_copy":                    value.Bool(true),
			"suppress_multiple_term_dialog": value.Bool(false),
			"tab_position":                  value.String("top"),
			"title_font":                    value.String("Sans 9"),
			"title_hide_sizetext":           value.Bool(false),
			"title_use_system_font":         value.Bool(true),
			"window_state":                  value.String("normal"),
		},
		Profile: value.Map{
			"allow_bold":          value.Bool(true),
			"audible_bell":        value.Bool(false),
			"autoclean_groups":    value.Bool(true),
			"background_color":    value.String("#000000"),
			"background_darkness": value.Float(0.5),
			"background_type":     value.String("solid"),
			"backspace_binding":   value.String("ascii-del"),
			"color_scheme":        value.String("grey_on_black"),
			"copy_on_selection":   value.Bool(false),
			"cursor_blink":        value.Bool(true),
			"cursor_color":        value.String(""),
			"cursor_shape":        value.String("block"),
			"custom_command":      value.String(""),
			"delete_binding":      value.String("escape-sequence"),
			"exit_action":         value.String("close"),
			"font":                value.String("Mono 10"),
			"foreground_color":    value.String("#aaaaaa"),
			"icon_bell":           value.Bool(true),
			"login_shell":         value.Bool(false),
			"mouse_autohide":      value.Bool(true),
			"scroll_on_keystroke": value.Bool(true),
			"scroll_on_output":    value.Bool(false),
			"scrollback_infinite": value.Bool(false),
			"scrollback_lines":    value.Int(500),
			"scrollbar_position":  value.String("right"),
			"show_titlebar":       value.Bool(true),
			"split_to_group":      value.Bool(false),
			"urgent_bell":         value.Bool(false),
			"use_custom_command":  value.Bool(false),
			"use_system_font":     value.Bool(true),
			"visible_bell":        value.Bool(false),
			"word_chars":          value.String("-,./?%&#:_"),
		},
		Keybindings: map[string]string{
			"broadcast_all":     "",
			"broadcast_group":   "",
			"broadcast_off":     "",
			"close_term":        "<Shift><Control>w",
			"close_window":      "<Shift><Control>q",
			"copy":              "<Shift><Control>c",
			"cycle_next":        "<Control>Tab",
			"cycle_prev":        "<Shift><Control>Tab",
			"edit_window_title": "<Control><Alt>w",
			"full_screen":       "F11",
			"go_next":           "<Shift><Control>n",
			"go_prev":           "<Shift><Control>p",
			"help":              "F1",
			"hide_window":       "<Shift><Control><Alt>a",
			"layout_launcher":   "<Alt>l",
			"new_tab":           "<Shift><Control>t",
			"new_window":        "<Shift><Control>i",
			"paste":             "<Shift><Control>v",
			"reset":             "<Shift><Control>r",
			"search":            "<Shift><Control>f",
			"split_horiz":       "<Shift><Control>o",
			"split_vert":        "<Shift><Control>e",
			"toggle_scrollbar":  "<Shift><Control>s",
			"zoom_in":           "<Control>plus",
			"zoom_normal":       "<Control>0",
			"zoom_out":          "<Control>minus",
		},
		Layout: layout.DefaultLayout(),
	}
}
