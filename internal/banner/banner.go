package banner

import "fmt"

const Version = "1.0.0"

func Print() {
	banner := `
 _    ___       _ __   ______
| |  / (_)___ _(_) /  / ____/___
| | / / / __ '/ / /  / / __ / __ \
| |/ / / /_/ / / /  / /_/ / /_/ /
|___/_/\__, /_/_/   \____/\____/
      /____/  v%s - Alert Engine
    `
	fmt.Printf(banner, Version)
	fmt.Println("\n------------------------------------------------")
}
