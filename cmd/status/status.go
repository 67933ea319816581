/*
 * Copyright 2025 Marek Chromy
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MarekChromy/Sambacontrolcenter/internal/constants"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check Samba Control Center server status",
		Run: func(cmd *cobra.Command, args []string) {
			pidFile := constants.SambaCCPIDFilePath
			if _, err := os.Stat(pidFile); err == nil {
				fmt.Println("Samba Control Center is running")
			} else {
				fmt.Println("Samba Control Center is not running")
			}
		},
	}
}
