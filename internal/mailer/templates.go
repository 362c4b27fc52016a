package mailer

import "html/template"

var inquiryTemplate = template.Must(template.New("inquiry").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #3B82F6, #1E40AF); color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0; font-size: 24px;">ApnaDera - Property Inquiry</h1>
  </div>
  <div style="padding: 20px; background: #f8f9fa;">
    <h2 style="color: #333; margin-bottom: 20px;">New Property Inquiry</h2>
    <div style="background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      <h3 style="color: #3B82F6; margin-bottom: 15px;">Property Details</h3>
      <p><strong>Property:</strong> {{.PropertyTitle}}</p>
      <p><strong>Property ID:</strong> {{.PropertyID}}</p>
    </div>
    <div style="background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      <h3 style="color: #3B82F6; margin-bottom: 15px;">Contact Information</h3>
      <p><strong>Name:</strong> {{.ContactName}}</p>
      <p><strong>Email:</strong> {{.ContactEmail}}</p>
      {{if .ContactPhone}}<p><strong>Phone:</strong> {{.ContactPhone}}</p>{{end}}
    </div>
    <div style="background: white; padding: 20px; border-radius: 8px;">
      <h3 style="color: #3B82F6; margin-bottom: 15px;">Message</h3>
      <p style="white-space: pre-wrap; line-height: 1.6;">{{.Message}}</p>
    </div>
  </div>
  <div style="background: #333; color: white; padding: 15px; text-align: center; font-size: 12px;">
    <p>This inquiry was sent through the ApnaDera platform</p>
  </div>
</div>
`))

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #3B82F6, #1E40AF); color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0; font-size: 24px;">ApnaDera - Inquiry Confirmation</h1>
  </div>
  <div style="padding: 20px; background: #f8f9fa;">
    <h2 style="color: #333; margin-bottom: 20px;">Your Inquiry Has Been Sent</h2>
    <div style="background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      <h3 style="color: #3B82F6; margin-bottom: 15px;">Property Details</h3>
      <p><strong>Property:</strong> {{.PropertyTitle}}</p>
      <p><strong>Contact:</strong> {{.RecipientName}} ({{.RecipientType}})</p>
    </div>
    <div style="background: white; padding: 20px; border-radius: 8px;">
      <h3 style="color: #3B82F6; margin-bottom: 15px;">Your Message</h3>
      <p style="white-space: pre-wrap; line-height: 1.6;">{{.Message}}</p>
    </div>
    <div style="margin-top: 20px; padding: 15px; background: #e8f5e8; border-radius: 8px; border-left: 4px solid #22c55e;">
      <p style="margin: 0; color: #166534;"><strong>Success!</strong> Your inquiry has been sent to {{.RecipientName}}. They will get back to you soon.</p>
    </div>
  </div>
  <div style="background: #333; color: white; padding: 15px; text-align: center; font-size: 12px;">
    <p>Thank you for using ApnaDera</p>
  </div>
</div>
`))
