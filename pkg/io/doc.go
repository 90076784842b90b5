// Package io reads and writes compiled icon sets as data files.
//
// # Manifest
//
// The manifest (icons.json) is the registry in JSON form. Commands that
// only read icons (search, render, replace, browse) load it instead of
// recompiling the sources:
//
//	{
//	  "library": "pangolin",
//	  "version": "0.1",
//	  "icons": [
//	    {"id": "user", "name": "user", "tags": ["user", "person"], "path": "<circle .../>"}
//	  ]
//	}
//
// Icons keep registry order. [ReadJSON] rebuilds the registry through
// [icon.Builder], so a manifest with duplicate ids is rejected with
// DUPLICATE_ICON just like a source directory would be.
//
// # Icon list
//
// [WriteIconList] emits a TOML list of icons with download URLs for the
// archived per-icon sources:
//
//	[[icons]]
//	description = "user"
//	url = "https://example.com/icons_svg/user_s24.svg"
package io
