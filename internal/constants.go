/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent = "tf2pugbot/0.4.1 (+https://github.com/tf2pug/pugbot)"
)
