// Package userdata renders the cloud-init script that turns a fresh
// instance into a web server hosting a tooplate.com template.
package userdata

import (
	"bytes"
	"text/template"
)

var script = template.Must(template.New("userdata").Parse(`#!/bin/bash
# Update system
yum update -y

# Install Apache web server
yum install -y httpd wget unzip

# Start and enable Apache
systemctl start httpd
systemctl enable httpd

# Download and setup template from tooplate.com
cd /tmp
wget https://www.tooplate.com/zip-templates/{{.TemplateID}}.zip
unzip -o {{.TemplateID}}.zip
cp -r {{.TemplateID}}/* /var/www/html/

# Set proper permissions
chown -R apache:apache /var/www/html
chmod -R 755 /var/www/html

# Create a custom index page with instance metadata
cat > /var/www/html/instance-info.html << 'EOF'
<!DOCTYPE html>
<html>
<head>
    <title>Instance Information</title>
</head>
<body>
    <h1>Deployment Info</h1>
    <p><strong>Instance ID:</strong> <span id="instance-id">Loading...</span></p>
    <p><strong>Availability Zone:</strong> <span id="az">Loading...</span></p>
    <p><strong>Template:</strong> {{.TemplateName}}</p>
    <p><a href="/">Back to main site</a></p>
    <script>
        fetch('http://169.254.169.254/latest/meta-data/instance-id')
            .then(r => r.text())
            .then(data => document.getElementById('instance-id').textContent = data);
        fetch('http://169.254.169.254/latest/meta-data/placement/availability-zone')
            .then(r => r.text())
            .then(data => document.getElementById('az').textContent = data);
    </script>
</body>
</html>
EOF

# Restart Apache
systemctl restart httpd

echo "Setup complete! Website is ready."
`))

// Params feed the user-data template.
type Params struct {
	TemplateID   string
	TemplateName string
}

// Render returns the bootstrap script for the given template.
func Render(p Params) (string, error) {
	var buf bytes.Buffer
	if err := script.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
